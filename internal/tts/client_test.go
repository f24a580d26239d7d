package tts

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSynthesizeDecodesAudio(t *testing.T) {
	wav := []byte("RIFF....WAVEdata")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "your refund is on the way", req["text"])
		json.NewEncoder(w).Encode(map[string]string{
			"audio": base64.StdEncoding.EncodeToString(wav),
		})
	}))
	defer server.Close()

	c := NewClient(Config{URL: server.URL})
	audio, err := c.Synthesize(context.Background(), "your refund is on the way")

	require.NoError(t, err)
	assert.Equal(t, wav, audio)
}

func TestSynthesizeMissingAudioField(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	c := NewClient(Config{URL: server.URL})
	_, err := c.Synthesize(context.Background(), "hello")
	assert.Error(t, err)
}

func TestSynthesizeInvalidBase64(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"audio": "!!!not-base64!!!"}`))
	}))
	defer server.Close()

	c := NewClient(Config{URL: server.URL})
	_, err := c.Synthesize(context.Background(), "hello")
	assert.Error(t, err)
}

func TestSynthesizeServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	c := NewClient(Config{URL: server.URL})
	_, err := c.Synthesize(context.Background(), "hello")
	assert.Error(t, err)
}
