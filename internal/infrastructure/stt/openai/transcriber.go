// Package openai adapts the OpenAI audio transcription API to the
// pipeline's Transcriber port. The client is constructed once at startup
// and shared by every request.
package openai

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/kirillkom/voicebill/internal/core/domain"
	"github.com/kirillkom/voicebill/internal/infrastructure/resilience"
)

type Transcriber struct {
	client   oai.Client
	model    oai.AudioModel
	language string
	executor *resilience.Executor
}

func New(apiKey, baseURL, model, language string, executor *resilience.Executor) (*Transcriber, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("stt: api key must not be empty")
	}

	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	if model == "" {
		model = string(oai.AudioModelWhisper1)
	}

	return &Transcriber{
		client:   oai.NewClient(opts...),
		model:    oai.AudioModel(model),
		language: language,
		executor: executor,
	}, nil
}

// Transcribe reads the stored recording and returns its text. The audio
// file handle is scoped to this call; the caller owns deletion of the
// file itself.
func (t *Transcriber) Transcribe(ctx context.Context, audioPath string) (string, error) {
	f, err := os.Open(audioPath)
	if err != nil {
		return "", domain.WrapError(domain.ErrTranscription, "open audio file", err)
	}
	defer f.Close()

	var text string
	call := func(callCtx context.Context) error {
		if _, err := f.Seek(0, 0); err != nil {
			return fmt.Errorf("rewind audio file: %w", err)
		}
		params := oai.AudioTranscriptionNewParams{
			Model: t.model,
			File:  f,
		}
		if t.language != "" {
			params.Language = oai.String(t.language)
		}
		resp, err := t.client.Audio.Transcriptions.New(callCtx, params)
		if err != nil {
			return err
		}
		text = strings.TrimSpace(resp.Text)
		return nil
	}

	if t.executor != nil {
		err = t.executor.Execute(ctx, "stt.transcribe", call, classifyTranscriptionError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return "", domain.WrapError(domain.ErrTranscription, "transcribe audio", err)
	}
	return text, nil
}

func classifyTranscriptionError(err error) resilience.ErrorClassification {
	if err == nil {
		return resilience.ErrorClassification{}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return resilience.ErrorClassification{Retryable: false, RecordFailure: false}
	}
	if resilience.IsCircuitOpen(err) {
		return resilience.ErrorClassification{Retryable: true, RecordFailure: true}
	}

	var apiErr *oai.Error
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case 408, 429, 500, 502, 503, 504:
			return resilience.ErrorClassification{Retryable: true, RecordFailure: true}
		default:
			return resilience.ErrorClassification{Retryable: false, RecordFailure: false}
		}
	}

	// Connection-level failures are worth another attempt.
	return resilience.ErrorClassification{Retryable: true, RecordFailure: true}
}
