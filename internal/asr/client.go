// Package asr is the client for the external speech-recognition service.
// The service accepts a multipart WAV upload and returns the transcribed
// text; recognition itself is entirely remote.
package asr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Client talks to the upload_file endpoint of the ASR server.
type Client struct {
	url    string
	client *http.Client
}

// Config configures the ASR client.
type Config struct {
	URL     string
	Timeout time.Duration
}

func NewClient(cfg Config) *Client {
	t := cfg.Timeout
	if t == 0 {
		t = 60 * time.Second
	}
	return &Client{url: cfg.URL, client: &http.Client{Timeout: t}}
}

// uploadResponse tolerates both response shapes the server has used: a
// single concatenated string or a list of per-segment strings.
type uploadResponse struct {
	Transcriptions transcriptions `json:"transcriptions"`
}

type transcriptions []string

func (t *transcriptions) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*t = list
		return nil
	}
	var one string
	if err := json.Unmarshal(data, &one); err != nil {
		return err
	}
	*t = []string{one}
	return nil
}

// Transcribe uploads the WAV file and returns the concatenated
// transcription. An empty transcription is reported as an error so the
// caller can re-prompt instead of answering silence.
func (c *Client) Transcribe(ctx context.Context, wavPath string) (string, error) {
	f, err := os.Open(wavPath)
	if err != nil {
		return "", fmt.Errorf("opening audio file: %w", err)
	}
	defer f.Close()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("audio_file", filepath.Base(wavPath))
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, f); err != nil {
		return "", err
	}
	if err := w.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling ASR server: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ASR server returned status %d", resp.StatusCode)
	}

	var out uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decoding ASR response: %w", err)
	}
	text := strings.TrimSpace(strings.Join(out.Transcriptions, " "))
	if text == "" {
		return "", fmt.Errorf("no transcription in ASR response")
	}
	return text, nil
}
