// Package server exposes the screening registry over HTTP.
package server

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"path/filepath"

	"github.com/gorilla/mux"

	"github.com/abhisek/earlyedge/internal/config"
	"github.com/abhisek/earlyedge/internal/pipeline"
)

// Server routes requests to the loaded screens. Routes for disabled
// screens are not registered.
type Server struct {
	reg      *pipeline.Registry
	cfg      config.ServerConfig
	audioDir string
	logger   *log.Logger
}

func New(reg *pipeline.Registry, cfg config.Config, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{reg: reg, cfg: cfg.Server, audioDir: cfg.AudioDir, logger: logger}
}

// Handler builds the router with all middleware applied.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.Use(s.recoverPanics, s.logRequests, s.cors)

	r.HandleFunc("/", s.root).Methods(http.MethodGet)
	r.HandleFunc("/health", s.health).Methods(http.MethodGet)
	r.HandleFunc("/audio/{file}", s.audio).Methods(http.MethodGet, http.MethodHead)

	if sp := s.reg.Spelling(); sp != nil {
		h := &spellingHandler{s: s, screen: sp}
		sub := r.PathPrefix("/spelling_test").Subrouter()
		sub.HandleFunc("/get-audio", h.getAudio).Methods(http.MethodGet, http.MethodOptions)
		sub.HandleFunc("/validate-answer", h.validate).Methods(http.MethodPost, http.MethodOptions)
		sub.HandleFunc("/summary", h.summary).Methods(http.MethodPost, http.MethodOptions)
	}
	if hw := s.reg.Handwriting(); hw != nil {
		h := &handwritingHandler{s: s, screen: hw}
		r.HandleFunc("/handwritten_test/dysgraphia/predict", h.predict).Methods(http.MethodPost, http.MethodOptions)
	}
	if ph := s.reg.Phono(); ph != nil {
		h := &phonoHandler{s: s, screen: ph}
		sub := r.PathPrefix("/phonospeech_test/phonospeech").Subrouter()
		sub.HandleFunc("/questions", h.questions).Methods(http.MethodGet, http.MethodOptions)
		sub.HandleFunc("/predict", h.predict).Methods(http.MethodPost, http.MethodOptions)
	}
	if ns := s.reg.NumberSense(); ns != nil {
		h := &numberHandler{s: s, screen: ns}
		sub := r.PathPrefix("/numberunderstanding_test").Subrouter()
		sub.HandleFunc("/getQuestions", h.question).Methods(http.MethodGet, http.MethodOptions)
		sub.HandleFunc("/predict", h.predict).Methods(http.MethodPost, http.MethodOptions)
	}
	if ar := s.reg.Arithmetic(); ar != nil {
		h := &arithmeticHandler{s: s, screen: ar}
		r.HandleFunc("/arithmetic_test/api/arithmetic/summary", h.summary).Methods(http.MethodPost, http.MethodOptions)
	}
	if tr := s.reg.Tracing(); tr != nil {
		h := &tracingHandler{s: s, screen: tr}
		r.HandleFunc("/letter_tracing/trace", h.trace).Methods(http.MethodPost, http.MethodOptions)
	}
	if lc := s.reg.LetterConfusion(); lc != nil {
		h := &letterHandler{s: s, screen: lc}
		r.HandleFunc("/letterconfusion_test/dyslexia/submit_answer/", h.submit).Methods(http.MethodPost, http.MethodOptions)
	}

	r.NotFoundHandler = s.recoverPanics(s.logRequests(s.cors(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Not Found")
	}))))
	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully within
// the configured timeout.
func (s *Server) Run(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		ErrorLog:     s.logger,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Println("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.logger.Println("Server exited")
	return nil
}

func (s *Server) root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "EarlyEdge API is running!"})
}

type healthResponse struct {
	Status     string   `json:"status"`
	Modalities []string `json:"modalities"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "ok", Modalities: []string{}}
	for _, m := range s.reg.Modalities() {
		resp.Modalities = append(resp.Modalities, m.Name())
	}
	writeJSON(w, http.StatusOK, resp)
}

// audio serves a spelling recording from the audio root.
func (s *Server) audio(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["file"]
	if !filepath.IsLocal(name) || filepath.Base(name) != name {
		writeError(w, http.StatusNotFound, "Not Found")
		return
	}
	http.ServeFile(w, r, filepath.Join(s.audioDir, name))
}
