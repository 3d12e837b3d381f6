package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"gptproxy/payload"
)

const responsesPath = "/responses"

// ResponsesClient sends a single combined user turn to the Responses API.
type ResponsesClient struct {
	baseURL      string
	apiKey       string
	model        string
	instructions string
	httpClient   *http.Client
}

// NewResponsesClient returns a client for <baseURL>/responses. instructions is
// sent as the request's system-level instructions when non-empty. A nil
// httpClient means http.DefaultClient.
func NewResponsesClient(baseURL, apiKey, model, instructions string, httpClient *http.Client) *ResponsesClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &ResponsesClient{
		baseURL:      strings.TrimRight(baseURL, "/"),
		apiKey:       apiKey,
		model:        model,
		instructions: instructions,
		httpClient:   httpClient,
	}
}

func (c *ResponsesClient) Name() string {
	return "responses"
}

// Infer makes exactly one attempt.
func (c *ResponsesClient) Infer(ctx context.Context, blocks []payload.ContentBlock) (string, error) {
	body, err := json.Marshal(buildResponsesRequest(c.model, c.instructions, blocks))
	if err != nil {
		return "", upstreamError(err)
	}

	url := fmt.Sprintf("%s%s", c.baseURL, responsesPath)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", upstreamError(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", upstreamError(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", upstreamError(err)
	}

	if resp.StatusCode >= 400 {
		return "", &UpstreamError{Status: resp.StatusCode, Detail: errorDetail(respBody)}
	}

	var parsed responsesResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", upstreamError(fmt.Errorf("decoding response: %w", err))
	}
	if parsed.Error != nil {
		return "", &UpstreamError{Status: resp.StatusCode, Detail: parsed.Error.Message}
	}

	text := outputText(&parsed)
	if text == "" {
		return "", upstreamError(errors.New("response contained no output text"))
	}
	return text, nil
}

func buildResponsesRequest(model, instructions string, blocks []payload.ContentBlock) *responsesRequest {
	parts := make([]responsesContentPart, 0, len(blocks))
	for _, block := range blocks {
		switch b := block.(type) {
		case payload.TextBlock:
			text := b.Text
			parts = append(parts, responsesContentPart{Type: "input_text", Text: &text})
		case payload.ImageBlock:
			parts = append(parts, responsesContentPart{Type: "input_image", ImageURL: b.DataURL})
		}
	}
	return &responsesRequest{
		Model:        model,
		Input:        []responsesInputMessage{{Role: "user", Content: parts}},
		Instructions: instructions,
	}
}

// outputText prefers the aggregated output_text and otherwise joins the
// output_text items of every message in order.
func outputText(resp *responsesResponse) string {
	if resp.OutputText != "" {
		return resp.OutputText
	}
	var sb strings.Builder
	for _, out := range resp.Output {
		if out.Type != "message" {
			continue
		}
		for _, c := range out.Content {
			if c.Type == "output_text" {
				sb.WriteString(c.Text)
			}
		}
	}
	return sb.String()
}

func errorDetail(body []byte) string {
	var env errorEnvelope
	if err := json.Unmarshal(body, &env); err == nil && env.Error.Message != "" {
		return env.Error.Message
	}
	const maxDetail = 512
	if len(body) > maxDetail {
		body = body[:maxDetail]
	}
	return strings.TrimSpace(string(body))
}
