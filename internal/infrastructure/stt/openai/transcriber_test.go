package openai

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kirillkom/voicebill/internal/core/domain"
)

func writeTempAudio(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "order.wav")
	if err := os.WriteFile(path, []byte("fake-wav-bytes"), 0o644); err != nil {
		t.Fatalf("write temp audio: %v", err)
	}
	return path
}

func TestTranscribeReturnsText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "/audio/transcriptions") {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"text":" two kg sugar for Ramesh "}`))
	}))
	defer server.Close()

	transcriber, err := New("test-key", server.URL, "whisper-1", "en", nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	text, err := transcriber.Transcribe(context.Background(), writeTempAudio(t))
	if err != nil {
		t.Fatalf("Transcribe() error = %v", err)
	}
	if text != "two kg sugar for Ramesh" {
		t.Fatalf("text = %q", text)
	}
}

func TestTranscribeMissingFile(t *testing.T) {
	transcriber, err := New("test-key", "", "", "", nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	_, err = transcriber.Transcribe(context.Background(), "/does/not/exist.wav")
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domain.IsKind(err, domain.ErrTranscription) {
		t.Fatalf("expected ErrTranscription kind, got %v", err)
	}
}

func TestNewRequiresAPIKey(t *testing.T) {
	if _, err := New("", "", "", "", nil); err == nil {
		t.Fatalf("expected error for empty api key")
	}
}

func TestClassifyTranscriptionError(t *testing.T) {
	if c := classifyTranscriptionError(context.Canceled); c.Retryable || c.RecordFailure {
		t.Fatalf("cancellation must not retry or trip the breaker: %+v", c)
	}
	if c := classifyTranscriptionError(errors.New("connection refused")); !c.Retryable {
		t.Fatalf("connection failures should retry: %+v", c)
	}
}
