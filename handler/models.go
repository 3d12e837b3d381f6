package handler

import (
	"strings"

	"gptproxy/payload"
)

// ImagePayload is one entry of the images list.
type ImagePayload struct {
	ImageB64 string `json:"image_b64"`
	MIME     string `json:"mime,omitempty"`
}

// InferRequest is the JSON body of POST /infer.
type InferRequest struct {
	Text   string         `json:"text"`
	Images []ImagePayload `json:"images,omitempty"`

	// Deprecated: single-image shape. Use Images.
	ImageB64 string `json:"image_b64,omitempty"`
	// Deprecated: MIME type of ImageB64. Use Images[].MIME.
	MIME     string `json:"mime,omitempty"`
}

// toInference folds the deprecated single-image fields in as the first image.
func (r *InferRequest) toInference() payload.InferenceRequest {
	attachments := make([]payload.ImageAttachment, 0, len(r.Images)+1)
	if r.ImageB64 != "" {
		attachments = append(attachments, payload.ImageAttachment{
			EncodedData:  r.ImageB64,
			DeclaredMIME: r.MIME,
		})
	}
	for _, img := range r.Images {
		attachments = append(attachments, payload.ImageAttachment{
			EncodedData:  img.ImageB64,
			DeclaredMIME: img.MIME,
		})
	}
	return payload.InferenceRequest{
		Prompt: r.Text,
		Images: attachments,
	}
}

func (r *InferRequest) usesDeprecatedFields() bool {
	return r.ImageB64 != "" || r.MIME != ""
}

// InferResponse is the success body of POST /infer.
type InferResponse struct {
	Model  string     `json:"model"`
	Output string     `json:"output"`
	Debug  *DebugInfo `json:"debug,omitempty"`
}

// DebugInfo describes how the request was prepared. It is only sent when expose_debug is on.
type DebugInfo struct {
	RequestID  string       `json:"request_id"`
	APIMode    string       `json:"api_mode"`
	ImageCount int          `json:"image_count"`
	TotalBytes int          `json:"total_bytes"`
	Images     []ImageDebug `json:"images"`
}

// ImageDebug describes one accepted image. Index is its position in the request.
type ImageDebug struct {
	Index        int    `json:"index"`
	MIME         string `json:"mime"`
	DeclaredMIME string `json:"declared_mime,omitempty"`
	B64Prefix    string `json:"b64_prefix"`
	ApproxBytes  int    `json:"approx_bytes"`
	DecodedLen   int    `json:"decoded_len"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string `json:"status"`
	Model  string `json:"model"`
}

// RootResponse is the body of GET /.
type RootResponse struct {
	OK      bool   `json:"ok"`
	Service string `json:"service"`
	Version string `json:"version"`
}

// EchoResponse is the body of POST /echo. Body is the parsed JSON, or the raw text when parsing fails.
type EchoResponse struct {
	Headers map[string]string `json:"headers"`
	Body    any               `json:"body"`
}

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

const b64PrefixLen = 20

func newDebugInfo(requestID, mode string, prepared *payload.Prepared) *DebugInfo {
	info := &DebugInfo{
		RequestID:  requestID,
		APIMode:    mode,
		ImageCount: len(prepared.Images),
		TotalBytes: prepared.TotalBytes,
		Images:     make([]ImageDebug, 0, len(prepared.Images)),
	}
	for _, img := range prepared.Images {
		prefix := img.Encoded
		if len(prefix) > b64PrefixLen {
			prefix = prefix[:b64PrefixLen]
		}
		info.Images = append(info.Images, ImageDebug{
			Index:        img.Index,
			MIME:         img.ResolvedMIME,
			DeclaredMIME: img.DeclaredMIME,
			B64Prefix:    prefix,
			ApproxBytes:  payload.EstimateDecodedLen(len(img.Encoded)),
			DecodedLen:   img.ByteLength,
		})
	}
	return info
}

func flattenHeaders(h map[string][]string) map[string]string {
	out := make(map[string]string, len(h))
	for k, v := range h {
		out[strings.ToLower(k)] = strings.Join(v, ", ")
	}
	return out
}
