package handler

import (
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"
)

func logRequest(r *http.Request, status int, requestID string) {
	log.WithFields(logrus.Fields{
		"remote":     r.RemoteAddr,
		"request_id": requestID,
		"status":     status,
	}).Infof("%s -- %s", r.Method, r.URL.Path)
}

// logAndReturnError writes httpResponseStr as the JSON detail. consoleStr is
// optional and replaces it in the log so internal detail never reaches the caller.
func logAndReturnError(w http.ResponseWriter, r *http.Request, httpResponseStr string, code int, consoleStr ...string) {
	entry := log.WithField("request_id", requestIDFrom(r))
	msg := httpResponseStr
	if len(consoleStr) > 0 {
		msg = consoleStr[0]
	}
	if code >= http.StatusInternalServerError {
		entry.Errorln(msg)
	} else {
		entry.Warnln(msg)
	}
	writeJSON(w, code, ErrorResponse{Detail: httpResponseStr})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Debugf("Failed to write response: %v", err)
	}
}
