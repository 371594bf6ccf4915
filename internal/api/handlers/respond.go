package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"unicode"
	"unicode/utf8"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// maxRequestBody caps every JSON request body.
const maxRequestBody = 1 << 20

// payload is the non-envelope part of a success reply.
type payload map[string]any

func writeJSON(w http.ResponseWriter, status int, body map[string]any, log *zap.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Warn("api encode failed", zap.Error(err))
	}
}

// ok writes {success: true, message, ...p}.
func (h *Handler) ok(w http.ResponseWriter, status int, message string, p payload) {
	body := map[string]any{"success": true}
	if message != "" {
		body["message"] = message
	}
	for k, v := range p {
		body[k] = v
	}
	writeJSON(w, status, body, h.Log)
}

// fail writes {success: false, message}.
func (h *Handler) fail(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"success": false, "message": message}, h.Log)
}

// serverError logs err and replies 500 with fallback, or 404 with notFound
// when err is mongo.ErrNoDocuments and notFound is set.
func (h *Handler) serverError(w http.ResponseWriter, r *http.Request, op string, err error, notFound, fallback string) {
	if notFound != "" && errors.Is(err, mongo.ErrNoDocuments) {
		h.fail(w, http.StatusNotFound, notFound)
		return
	}
	h.Log.Error("api call failed",
		zap.String("op", op),
		zap.String("path", r.URL.Path),
		zap.String("request_id", r.Header.Get("X-Request-ID")),
		zap.Error(err))
	h.fail(w, http.StatusInternalServerError, fallback)
}

// decodeJSON reads a single JSON object from the request body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("request body must hold a single JSON object")
	}
	return nil
}

// badBody replies 400 for an undecodable request body.
func (h *Handler) badBody(w http.ResponseWriter, err error) {
	h.Log.Debug("api request body rejected", zap.Error(err))
	h.fail(w, http.StatusBadRequest, "The request body is not valid JSON.")
}

// sentence turns a lowercase rule error ("students cannot be split ...")
// into a message: first letter upper-cased, trailing period added.
func sentence(err error) string {
	s := strings.TrimSpace(err.Error())
	if s == "" {
		return ""
	}
	r, size := utf8.DecodeRuneInString(s)
	s = string(unicode.ToUpper(r)) + s[size:]
	if !strings.HasSuffix(s, ".") {
		s += "."
	}
	return s
}
