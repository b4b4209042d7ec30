// Package transcription implements the transcription worker's stage: media
// fetch, container conversion, ASR, republish.
package transcription

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/kiekoher/agentflow/internal/apperrors"
	"github.com/kiekoher/agentflow/internal/blob"
	"github.com/kiekoher/agentflow/internal/envelope"
	"github.com/kiekoher/agentflow/internal/stream"
	"github.com/kiekoher/agentflow/internal/transcribe"
)

type Handler struct {
	Stream      *stream.Client
	Blob        *blob.Client
	Transcriber transcribe.Transcriber
	FFmpegPath  string
	Language    string
	TempDir     string
	Logger      *slog.Logger
}

func (h *Handler) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

func (h *Handler) Handle(ctx context.Context, entry stream.Entry) error {
	msg := envelope.FromFields(entry.Fields)

	if msg.MediaKey == "" {
		msg.Transcribed = "false"
		if _, err := h.Stream.Publish(ctx, "events:transcribed_message", msg.Fields()); err != nil {
			return fmt.Errorf("transcription: republish: %w", err)
		}
		return nil
	}

	text, err := h.transcribeMedia(ctx, msg.MediaKey)
	if err != nil {
		return err
	}

	msg.Body = text
	msg.Transcribed = "true"
	if _, err := h.Stream.Publish(ctx, "events:transcribed_message", msg.Fields()); err != nil {
		return fmt.Errorf("transcription: republish: %w", err)
	}
	return nil
}

func (h *Handler) transcribeMedia(ctx context.Context, mediaKey string) (string, error) {
	data, err := h.Blob.Get(ctx, mediaKey)
	if err != nil {
		return "", fmt.Errorf("transcription: fetch blob: %w", err)
	}
	if len(data) > transcribe.MaxAudioBytes {
		return "", apperrors.Terminal(fmt.Errorf("transcription: media exceeds %d bytes", transcribe.MaxAudioBytes))
	}

	rawPath := h.tempPath("raw")
	wavPath := h.tempPath("wav")
	defer os.Remove(rawPath)
	defer os.Remove(wavPath)

	if err := os.WriteFile(rawPath, data, 0o600); err != nil {
		return "", fmt.Errorf("transcription: write temp: %w", err)
	}

	if err := transcribe.ConvertToWAV(ctx, h.FFmpegPath, rawPath, wavPath); err != nil {
		return "", apperrors.Terminal(fmt.Errorf("transcription: convert: %w", err))
	}

	text, err := h.Transcriber.Transcribe(ctx, wavPath, h.Language)
	if err != nil {
		return "", apperrors.Terminal(fmt.Errorf("transcription: asr: %w", err))
	}

	return strings.TrimSpace(text), nil
}

func (h *Handler) tempPath(suffix string) string {
	dir := h.TempDir
	if dir == "" {
		dir = os.TempDir()
	}
	return dir + "/" + uuid.NewString() + "-" + suffix
}
