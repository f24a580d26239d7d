package asr

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempWAV(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "recorded.wav")
	require.NoError(t, os.WriteFile(path, []byte("RIFF....WAVE"), 0o644))
	return path
}

func TestTranscribeListResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1 << 20))
		_, header, err := r.FormFile("audio_file")
		require.NoError(t, err)
		assert.Equal(t, "recorded.wav", header.Filename)
		w.Write([]byte(`{"transcriptions": ["where is", "my refund"]}`))
	}))
	defer server.Close()

	c := NewClient(Config{URL: server.URL})
	text, err := c.Transcribe(context.Background(), writeTempWAV(t))

	require.NoError(t, err)
	assert.Equal(t, "where is my refund", text)
}

func TestTranscribeStringResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"transcriptions": "where is my refund"}`))
	}))
	defer server.Close()

	c := NewClient(Config{URL: server.URL})
	text, err := c.Transcribe(context.Background(), writeTempWAV(t))

	require.NoError(t, err)
	assert.Equal(t, "where is my refund", text)
}

func TestTranscribeEmptyTranscription(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"transcriptions": []}`))
	}))
	defer server.Close()

	c := NewClient(Config{URL: server.URL})
	_, err := c.Transcribe(context.Background(), writeTempWAV(t))
	assert.Error(t, err)
}

func TestTranscribeServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	c := NewClient(Config{URL: server.URL})
	_, err := c.Transcribe(context.Background(), writeTempWAV(t))
	assert.Error(t, err)
}

func TestTranscribeMissingFile(t *testing.T) {
	c := NewClient(Config{URL: "http://localhost:0"})
	_, err := c.Transcribe(context.Background(), "/does/not/exist.wav")
	assert.Error(t, err)
}
