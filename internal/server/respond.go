package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/abhisek/earlyedge/internal/pipeline"
)

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error   string   `json:"error"`
	Field   string   `json:"field,omitempty"`
	Allowed []string `json:"allowed,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorBody{Error: message})
}

// statusOf maps a pipeline error kind to an HTTP status.
func statusOf(k pipeline.Kind) int {
	switch k {
	case pipeline.KindValidation:
		return http.StatusBadRequest
	case pipeline.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// fail writes err. Validation errors carry the offending field and the
// permitted values; server-side failures are logged with the request id.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	if tooLarge(err) {
		writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("request body exceeds %d bytes", s.cfg.MaxUploadBytes))
		return
	}

	var pe *pipeline.Error
	if !errors.As(err, &pe) {
		pe = pipeline.Extraction("internal error", err)
	}
	status := statusOf(pe.Kind)
	if status >= http.StatusInternalServerError {
		s.logger.Printf("%s %s failed id=%s: %v", r.Method, r.URL.Path, requestID(r.Context()), err)
	}
	writeJSON(w, status, errorBody{Error: pe.Error(), Field: pe.Field, Allowed: pe.Allowed})
}

// present records whether a required request field was sent.
type present struct {
	name string
	set  bool
}

// requireFields rejects the first absent field, naming it with prefix.
func requireFields(prefix string, fields ...present) error {
	for _, f := range fields {
		if !f.set {
			return pipeline.Validation(prefix+f.name, "%s is required", prefix+f.name)
		}
	}
	return nil
}

func tooLarge(err error) bool {
	var mbe *http.MaxBytesError
	return errors.As(err, &mbe) || errors.Is(err, multipart.ErrMessageTooLarge)
}

// decode reads a JSON body of at most the configured upload size into v.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		if tooLarge(err) {
			return err
		}
		if errors.Is(err, io.EOF) {
			return pipeline.Validation("body", "request body is empty")
		}
		var ute *json.UnmarshalTypeError
		if errors.As(err, &ute) && ute.Field != "" {
			return pipeline.Validation(ute.Field, "%s must be a %s", ute.Field, ute.Type)
		}
		return pipeline.Validation("body", "invalid JSON: %v", err)
	}
	return nil
}
