package localfs

import (
	"context"
	"io"
	"strings"
	"testing"
)

func TestStorageRoundTrip(t *testing.T) {
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	ctx := context.Background()

	if err := store.Save(ctx, "voice_abc_order.wav", strings.NewReader("payload")); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	rc, err := store.Open(ctx, "voice_abc_order.wav")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	data, err := io.ReadAll(rc)
	rc.Close()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "payload" {
		t.Fatalf("read %q, want %q", data, "payload")
	}

	if err := store.Remove(ctx, "voice_abc_order.wav"); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if _, err := store.Open(ctx, "voice_abc_order.wav"); err == nil {
		t.Fatalf("expected open to fail after remove")
	}
}

func TestStorageRemoveMissingIsNoError(t *testing.T) {
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := store.Remove(context.Background(), "never_saved.wav"); err != nil {
		t.Fatalf("Remove() of missing key error = %v", err)
	}
}
