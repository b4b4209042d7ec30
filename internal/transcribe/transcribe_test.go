package transcribe

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestConvertToWAVRejectsOversizedInput(t *testing.T) {
	dir := t.TempDir()
	inputPath := filepath.Join(dir, "input.ogg")
	if err := os.WriteFile(inputPath, make([]byte, MaxAudioBytes+1), 0o600); err != nil {
		t.Fatalf("unexpected write error: %v", err)
	}

	err := ConvertToWAV(context.Background(), "ffmpeg", inputPath, filepath.Join(dir, "out.wav"))
	if err == nil {
		t.Fatal("expected an error for oversized input")
	}
	if !strings.Contains(err.Error(), "exceeds") {
		t.Fatalf("expected a size-related error, got %v", err)
	}
}

func TestConvertToWAVMissingInputFails(t *testing.T) {
	dir := t.TempDir()
	err := ConvertToWAV(context.Background(), "ffmpeg", filepath.Join(dir, "missing.ogg"), filepath.Join(dir, "out.wav"))
	if err == nil {
		t.Fatal("expected an error for a missing input file")
	}
}
