package ports

import (
	"context"
	"io"

	"github.com/kirillkom/voicebill/internal/core/domain"
)

// VoiceBillProcessor runs the full voice-to-bill pipeline for one uploaded
// recording and returns the finished bill. Only a rendering failure is
// surfaced as an error; every other stage degrades the bill instead.
type VoiceBillProcessor interface {
	ProcessVoiceOrder(ctx context.Context, filename string, audio io.Reader) (*domain.Bill, error)
}
