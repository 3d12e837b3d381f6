package backend

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"gptproxy/config"
	"gptproxy/payload"
)

// ErrUpstream wraps every failure of the upstream inference call.
var ErrUpstream = errors.New("upstream inference failed")

// Gateway sends a prepared block sequence to the inference provider and returns its text output.
type Gateway interface {
	Infer(ctx context.Context, blocks []payload.ContentBlock) (string, error)
	Name() string
}

// UpstreamError keeps the provider detail for logging. Callers must not expose it.
type UpstreamError struct {
	Status int
	Detail string
	Err    error
}

func (e *UpstreamError) Error() string {
	msg := ErrUpstream.Error()
	if e.Status != 0 {
		msg = fmt.Sprintf("%s (status=%d)", msg, e.Status)
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *UpstreamError) Is(target error) bool {
	return target == ErrUpstream
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

func upstreamError(err error) error {
	return &UpstreamError{Err: err}
}

// New returns the gateway for the configured call shape.
func New(cfg *config.Config) (Gateway, error) {
	httpClient := &http.Client{
		Timeout: cfg.UpstreamTimeout,
	}
	switch cfg.APIMode {
	case config.ModeResponses:
		return NewResponsesClient(cfg.BaseURL, cfg.APIKey, cfg.Model, cfg.SystemPrompt, httpClient), nil
	case config.ModeChat:
		return NewChatClient(cfg.BaseURL, cfg.APIKey, cfg.Model, cfg.SystemPrompt, httpClient), nil
	default:
		return nil, fmt.Errorf("unknown api mode %q", cfg.APIMode)
	}
}
