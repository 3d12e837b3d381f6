package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"gptproxy/backend"
	"gptproxy/config"
	"gptproxy/logging"
	"gptproxy/monitor"
	"gptproxy/payload"
)

// Version is reported by GET /.
var Version = "1.6"

const (
	detailInvalidBody     = "invalid request body"
	detailTextRequired    = "text is required"
	detailInvalidEncoding = "invalid base64 encoding"
	detailTooLarge        = "payload too large"
	detailInference       = "inference error"
	detailNotFound        = "not found"
	detailMethod          = "method not allowed"
)

type contextKey string

const requestIDKey = contextKey("requestID")

var log *logrus.Logger

func init() {
	log = logging.GetLogger()
}

// HTTPHandler serves the proxy endpoints. Config and Gateway are shared
// read-only by every request.
type HTTPHandler struct {
	Config  *config.Config
	Gateway backend.Gateway
	Monitor *monitor.InflightMonitor
	mux     *http.ServeMux
}

// NewHTTPHandler wires the routes. mon may be nil.
func NewHTTPHandler(cfg *config.Config, gw backend.Gateway, mon *monitor.InflightMonitor) *HTTPHandler {
	h := &HTTPHandler{
		Config:  cfg,
		Gateway: gw,
		Monitor: mon,
		mux:     http.NewServeMux(),
	}
	// 404 and 405 replies go through logAndReturnError like every other error.
	h.mux.HandleFunc("/{$}", allowMethod(http.MethodGet, h.handleRoot))
	h.mux.HandleFunc("/health", allowMethod(http.MethodGet, h.handleHealth))
	h.mux.HandleFunc("/echo", allowMethod(http.MethodPost, h.handleEcho))
	h.mux.HandleFunc("/infer", allowMethod(http.MethodPost, h.handleInfer))
	h.mux.HandleFunc("/", h.handleNotFound)
	return h
}

// allowMethod rejects any method other than method. GET routes also answer HEAD.
func allowMethod(method string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != method && !(method == http.MethodGet && r.Method == http.MethodHead) {
			w.Header().Set("Allow", method)
			logAndReturnError(w, r, detailMethod, http.StatusMethodNotAllowed)
			return
		}
		next(w, r)
	}
}

func (h *HTTPHandler) handleNotFound(w http.ResponseWriter, r *http.Request) {
	logAndReturnError(w, r, detailNotFound, http.StatusNotFound)
}

// ServeHTTP implements the http.Handler interface for HTTPHandler.
func (h *HTTPHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestID := uuid.NewString()
	w.Header().Set("X-Request-ID", requestID)
	r = r.WithContext(context.WithValue(r.Context(), requestIDKey, requestID))

	rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
	h.mux.ServeHTTP(rec, r)
	logRequest(r, rec.status, requestID)
}

func (h *HTTPHandler) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, RootResponse{OK: true, Service: "GPT Proxy", Version: Version})
}

func (h *HTTPHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Model: h.Config.Model})
}

func (h *HTTPHandler) handleEcho(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.Config.MaxBodyBytes))
	if err != nil {
		h.bodyError(w, r, err)
		return
	}

	var body any
	if err := json.Unmarshal(raw, &body); err != nil {
		body = strings.ToValidUTF8(string(raw), "\uFFFD")
	}
	headers := flattenHeaders(r.Header)
	headers["host"] = r.Host
	writeJSON(w, http.StatusOK, EchoResponse{Headers: headers, Body: body})
}

func (h *HTTPHandler) handleInfer(w http.ResponseWriter, r *http.Request) {
	var in InferRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, h.Config.MaxBodyBytes))
	if err := dec.Decode(&in); err != nil {
		h.bodyError(w, r, err)
		return
	}
	// The body must hold exactly one JSON value.
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		if err == nil {
			err = errors.New("unexpected data after JSON body")
		}
		h.bodyError(w, r, err)
		return
	}
	if strings.TrimSpace(in.Text) == "" {
		logAndReturnError(w, r, detailTextRequired, http.StatusBadRequest)
		return
	}
	if in.usesDeprecatedFields() {
		log.WithField("request_id", requestIDFrom(r)).Debugln("Request uses deprecated image_b64/mime fields")
	}

	prepared, err := payload.Prepare(in.toInference(), h.Config.MaxRequestBytes)
	if err != nil {
		switch {
		case errors.Is(err, payload.ErrInvalidEncoding):
			logAndReturnError(w, r, detailInvalidEncoding, http.StatusBadRequest, err.Error())
		case errors.Is(err, payload.ErrPayloadTooLarge):
			logAndReturnError(w, r, detailTooLarge, http.StatusRequestEntityTooLarge, err.Error())
		default:
			logAndReturnError(w, r, detailInference, http.StatusInternalServerError, err.Error())
		}
		return
	}

	output, err := h.infer(r.Context(), prepared.Blocks)
	if err != nil {
		logAndReturnError(w, r, detailInference, http.StatusInternalServerError, "Inference failed: "+err.Error())
		return
	}

	resp := InferResponse{Model: h.Config.Model, Output: output}
	if h.Config.ExposeDebug {
		resp.Debug = newDebugInfo(requestIDFrom(r), h.Gateway.Name(), prepared)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *HTTPHandler) infer(ctx context.Context, blocks []payload.ContentBlock) (string, error) {
	if h.Monitor == nil {
		return h.Gateway.Infer(ctx, blocks)
	}
	finish := h.Monitor.Track(h.Config.Model)
	output, err := h.Gateway.Infer(ctx, blocks)
	finish(err)
	return output, err
}

func (h *HTTPHandler) bodyError(w http.ResponseWriter, r *http.Request, err error) {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		logAndReturnError(w, r, detailTooLarge, http.StatusRequestEntityTooLarge, err.Error())
		return
	}
	logAndReturnError(w, r, detailInvalidBody, http.StatusBadRequest, "Bad Request: "+err.Error())
}

func requestIDFrom(r *http.Request) string {
	id, _ := r.Context().Value(requestIDKey).(string)
	return id
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}
