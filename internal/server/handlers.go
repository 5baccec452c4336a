package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/abhisek/earlyedge/internal/features/numeric"
	"github.com/abhisek/earlyedge/internal/pipeline"
)

type spellingHandler struct {
	s      *Server
	screen *pipeline.Spelling
}

// getAudio handles GET /spelling_test/get-audio
func (h *spellingHandler) getAudio(w http.ResponseWriter, r *http.Request) {
	prompt, err := h.screen.RandomAudio()
	if err != nil {
		h.s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, prompt)
}

type validateRequest struct {
	UserAnswer    string `json:"user_answer"`
	AudioFile     string `json:"audio_file"`
	AttemptNumber int    `json:"attempt_number"`
}

// validate handles POST /spelling_test/validate-answer
func (h *spellingHandler) validate(w http.ResponseWriter, r *http.Request) {
	var req validateRequest
	if err := h.s.decode(w, r, &req); err != nil {
		h.s.fail(w, r, err)
		return
	}
	res, err := h.screen.Validate(pipeline.SpellingAnswer{
		UserAnswer:    req.UserAnswer,
		AudioFile:     req.AudioFile,
		AttemptNumber: req.AttemptNumber,
	})
	if err != nil {
		h.s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type spellingSummaryRequest struct {
	Probabilities []float64 `json:"probabilities"`
}

// summary handles POST /spelling_test/summary
func (h *spellingHandler) summary(w http.ResponseWriter, r *http.Request) {
	var req spellingSummaryRequest
	if err := h.s.decode(w, r, &req); err != nil {
		h.s.fail(w, r, err)
		return
	}
	sum, err := h.screen.Summarize(req.Probabilities)
	if err != nil {
		h.s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

type handwritingHandler struct {
	s      *Server
	screen *pipeline.Handwriting
}

// predict handles POST /handwritten_test/dysgraphia/predict
func (h *handwritingHandler) predict(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.s.cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(h.s.cfg.MaxUploadBytes); err != nil {
		h.s.fail(w, r, multipartError(err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	headers := r.MultipartForm.File["files"]
	if len(headers) < 1 || len(headers) > h.screen.MaxFiles() {
		h.s.fail(w, r, pipeline.Validation("files", "Please upload 1 to %d images.", h.screen.MaxFiles()))
		return
	}
	uploads := make([]pipeline.ImageUpload, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			h.s.fail(w, r, pipeline.Extraction(fmt.Sprintf("open upload %q", fh.Filename), err))
			return
		}
		defer f.Close()
		uploads = append(uploads, pipeline.ImageUpload{Filename: fh.Filename, Body: f})
	}

	res, err := h.screen.Predict(uploads)
	if err != nil {
		h.s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func multipartError(err error) error {
	if tooLarge(err) {
		return err
	}
	return pipeline.Validation("files", "expected a multipart form with image files: %v", err)
}

type phonoHandler struct {
	s      *Server
	screen *pipeline.Phono
}

type questionsResponse struct {
	Questions []string `json:"questions"`
}

// questions handles GET /phonospeech_test/phonospeech/questions
func (h *phonoHandler) questions(w http.ResponseWriter, r *http.Request) {
	qs, err := h.screen.Questions()
	if err != nil {
		h.s.fail(w, r, err)
		return
	}
	if qs == nil {
		qs = []string{}
	}
	writeJSON(w, http.StatusOK, questionsResponse{Questions: qs})
}

type phonoRequest struct {
	Question      *string `json:"question"`
	ChildResponse *string `json:"child_response"`
}

// predict handles POST /phonospeech_test/phonospeech/predict
func (h *phonoHandler) predict(w http.ResponseWriter, r *http.Request) {
	var req phonoRequest
	if err := h.s.decode(w, r, &req); err != nil {
		h.s.fail(w, r, err)
		return
	}
	if req.Question == nil {
		h.s.fail(w, r, pipeline.Validation("question", "question is required"))
		return
	}
	if req.ChildResponse == nil {
		h.s.fail(w, r, pipeline.Validation("child_response", "child_response is required"))
		return
	}
	res, err := h.screen.Predict(*req.Question, *req.ChildResponse)
	if err != nil {
		h.s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type numberHandler struct {
	s      *Server
	screen *pipeline.NumberSense
}

// question handles GET /numberunderstanding_test/getQuestions
func (h *numberHandler) question(w http.ResponseWriter, r *http.Request) {
	q, err := h.screen.RandomQuestion()
	if err != nil {
		h.s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

type numberRequest struct {
	LeftNumber      *float64 `json:"left_number"`
	RightNumber     *float64 `json:"right_number"`
	ResponseTimeSec *float64 `json:"response_time_sec"`
	UserCorrect     *int     `json:"user_correct"`
}

// predict handles POST /numberunderstanding_test/predict
func (h *numberHandler) predict(w http.ResponseWriter, r *http.Request) {
	var req numberRequest
	if err := h.s.decode(w, r, &req); err != nil {
		h.s.fail(w, r, err)
		return
	}
	if err := requireFields("",
		present{"left_number", req.LeftNumber != nil},
		present{"right_number", req.RightNumber != nil},
		present{"response_time_sec", req.ResponseTimeSec != nil},
		present{"user_correct", req.UserCorrect != nil},
	); err != nil {
		h.s.fail(w, r, err)
		return
	}
	res, err := h.screen.Predict(pipeline.NumberAnswer{
		LeftNumber:      *req.LeftNumber,
		RightNumber:     *req.RightNumber,
		ResponseTimeSec: *req.ResponseTimeSec,
		UserCorrect:     *req.UserCorrect,
	})
	if err != nil {
		h.s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type arithmeticHandler struct {
	s      *Server
	screen *pipeline.Arithmetic
}

type arithmeticAttempt struct {
	Op1          *float64 `json:"op1"`
	Op2          *float64 `json:"op2"`
	Operation    *string  `json:"operation"`
	UserChoice   *int     `json:"user_choice"`
	ResponseTime *float64 `json:"response_time"`
}

type arithmeticRequest struct {
	Attempts []arithmeticAttempt `json:"attempts"`
}

// summary handles POST /arithmetic_test/api/arithmetic/summary
func (h *arithmeticHandler) summary(w http.ResponseWriter, r *http.Request) {
	var req arithmeticRequest
	if err := h.s.decode(w, r, &req); err != nil {
		h.s.fail(w, r, err)
		return
	}
	if req.Attempts == nil {
		h.s.fail(w, r, pipeline.Validation("attempts", "attempts is required"))
		return
	}
	attempts := make([]numeric.Arithmetic, len(req.Attempts))
	for i, a := range req.Attempts {
		if err := requireFields(fmt.Sprintf("attempts[%d].", i),
			present{"op1", a.Op1 != nil},
			present{"op2", a.Op2 != nil},
			present{"operation", a.Operation != nil},
			present{"user_choice", a.UserChoice != nil},
			present{"response_time", a.ResponseTime != nil},
		); err != nil {
			h.s.fail(w, r, err)
			return
		}
		attempts[i] = numeric.Arithmetic{
			Op1:          *a.Op1,
			Op2:          *a.Op2,
			Operation:    *a.Operation,
			UserChoice:   *a.UserChoice,
			ResponseTime: *a.ResponseTime,
		}
	}
	sum, err := h.screen.Summarize(attempts)
	if err != nil {
		h.s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

type tracingHandler struct {
	s      *Server
	screen *pipeline.Tracing
}

// traceRequest carries the drawing as an opaque data URL; it is not
// scored.
type traceRequest struct {
	Letter   string   `json:"letter"`
	Drawing  string   `json:"drawing"`
	Duration *float64 `json:"duration"`
	Accuracy *float64 `json:"accuracy"`
}

// trace handles POST /letter_tracing/trace
func (h *tracingHandler) trace(w http.ResponseWriter, r *http.Request) {
	var req traceRequest
	if err := h.s.decode(w, r, &req); err != nil {
		h.s.fail(w, r, err)
		return
	}
	if req.Duration == nil || req.Accuracy == nil {
		h.s.fail(w, r, pipeline.Validation("duration", "Invalid duration or accuracy"))
		return
	}
	res, err := h.screen.Trace(*req.Duration, *req.Accuracy)
	if err != nil {
		h.s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type letterHandler struct {
	s      *Server
	screen *pipeline.LetterConfusion
}

// flexBool accepts true/false or a number, where any non-zero number is
// true.
type flexBool bool

func (b *flexBool) UnmarshalJSON(data []byte) error {
	var v bool
	if err := json.Unmarshal(data, &v); err == nil {
		*b = flexBool(v)
		return nil
	}
	var n float64
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("correct must be a boolean or a number, got %s", data)
	}
	*b = n != 0
	return nil
}

type letterAnswer struct {
	QuestionType   *string   `json:"question_type"`
	ShownLetters   []string  `json:"shown_letters"`
	Correct        *flexBool `json:"correct"`
	ResponseTimeMs *float64  `json:"response_time_ms"`
}

// submit handles POST /letterconfusion_test/dyslexia/submit_answer/
// The body is a bare JSON array of answers.
func (h *letterHandler) submit(w http.ResponseWriter, r *http.Request) {
	var req []letterAnswer
	if err := h.s.decode(w, r, &req); err != nil {
		h.s.fail(w, r, err)
		return
	}
	answers := make([]numeric.LetterAnswer, len(req))
	for i, a := range req {
		if err := requireFields(fmt.Sprintf("[%d].", i),
			present{"question_type", a.QuestionType != nil},
			present{"shown_letters", a.ShownLetters != nil},
			present{"correct", a.Correct != nil},
			present{"response_time_ms", a.ResponseTimeMs != nil},
		); err != nil {
			h.s.fail(w, r, err)
			return
		}
		answers[i] = numeric.LetterAnswer{
			QuestionType:   *a.QuestionType,
			ShownLetters:   a.ShownLetters,
			Correct:        bool(*a.Correct),
			ResponseTimeMs: *a.ResponseTimeMs,
		}
	}
	res, err := h.screen.Submit(answers)
	if err != nil {
		h.s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
