package ollama

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/kirillkom/voicebill/internal/core/domain"
	"github.com/kirillkom/voicebill/internal/infrastructure/resilience"
)

type Client struct {
	baseURL    string
	model      string
	httpClient *http.Client
}

func New(baseURL, model string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		httpClient: &http.Client{Timeout: 120 * time.Second},
	}
}

// Extractor turns a raw transcript into a structured grocery order using
// the language model. The model is asked for strict JSON, but its output
// is never trusted: see parse.go for the recovery rules.
type Extractor struct {
	client   *Client
	executor *resilience.Executor
}

func NewExtractor(client *Client, executor *resilience.Executor) *Extractor {
	return &Extractor{client: client, executor: executor}
}

func (e *Extractor) Extract(ctx context.Context, transcript string) (domain.ExtractedOrder, error) {
	var raw string
	call := func(callCtx context.Context) error {
		var err error
		raw, err = e.client.generateJSON(callCtx, buildOrderPrompt(transcript))
		return err
	}

	var err error
	if e.executor != nil {
		err = e.executor.Execute(ctx, "llm.extract", call, classifyOllamaError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return domain.ExtractedOrder{}, domain.WrapError(domain.ErrExtraction, "generate order json", err)
	}

	order, err := parseOrderResponse(raw)
	if err != nil {
		return domain.ExtractedOrder{}, domain.WrapError(domain.ErrExtraction, "parse order json", err)
	}
	return order, nil
}

func (c *Client) generateJSON(ctx context.Context, prompt string) (string, error) {
	reqBody := map[string]any{
		"model":  c.model,
		"prompt": prompt,
		"stream": false,
		"format": "json",
	}

	var response struct {
		Response string `json:"response"`
	}
	if err := c.postJSON(ctx, "/api/generate", reqBody, &response, "generate"); err != nil {
		return "", err
	}
	return strings.TrimSpace(response.Response), nil
}
