package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"mime/multipart"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/earlyedge/internal/config"
	"github.com/abhisek/earlyedge/internal/pipeline"
	"github.com/abhisek/earlyedge/internal/pipeline/pipelinetest"
)

func newTestServer(t *testing.T, mutate func(*config.Config)) (*httptest.Server, *bytes.Buffer) {
	t.Helper()
	cfg := pipelinetest.Layout(t)
	if mutate != nil {
		mutate(&cfg)
	}
	var logs bytes.Buffer
	logger := log.New(&logs, "", 0)
	reg, err := pipeline.Load(cfg, logger, pipeline.Options{Pick: pipelinetest.First})
	require.NoError(t, err)

	ts := httptest.NewServer(New(reg, cfg, logger).Handler())
	t.Cleanup(ts.Close)
	return ts, &logs
}

func postJSON(t *testing.T, url, body string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	return resp, decodeBody(t, resp)
}

func get(t *testing.T, url string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	return resp, decodeBody(t, resp)
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out map[string]any
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return out
}

func TestRootAndHealth(t *testing.T) {
	ts, _ := newTestServer(t, nil)

	resp, body := get(t, ts.URL+"/")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "EarlyEdge API is running!", body["message"])
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	resp, body = get(t, ts.URL+"/health")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])
	assert.Len(t, body["modalities"], len(config.AllModalities))
}

func TestRequestIDIsEchoed(t *testing.T) {
	ts, logs := newTestServer(t, nil)

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/health", nil)
	require.NoError(t, err)
	req.Header.Set("X-Request-ID", "abc-123")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, "abc-123", resp.Header.Get("X-Request-ID"))
	assert.Contains(t, logs.String(), "GET /health 200")
	assert.Contains(t, logs.String(), "id=abc-123")
}

func TestCORSPreflight(t *testing.T) {
	ts, _ := newTestServer(t, nil)

	req, err := http.NewRequest(http.MethodOptions, ts.URL+"/numberunderstanding_test/predict", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:3000")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestCORSAllowList(t *testing.T) {
	ts, _ := newTestServer(t, func(c *config.Config) {
		c.Server.CORSOrigins = []string{"http://app.example"}
	})

	for origin, want := range map[string]string{
		"http://app.example":  "http://app.example",
		"http://evil.example": "",
	} {
		req, err := http.NewRequest(http.MethodGet, ts.URL+"/health", nil)
		require.NoError(t, err)
		req.Header.Set("Origin", origin)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, want, resp.Header.Get("Access-Control-Allow-Origin"), origin)
	}
}

func TestSpellingRoutes(t *testing.T) {
	ts, _ := newTestServer(t, nil)

	resp, body := get(t, ts.URL+"/spelling_test/get-audio")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "audio/correct/cat.wav", body["audio_file"])
	assert.Equal(t, "cat", body["correct_word"])

	resp, body = postJSON(t, ts.URL+"/spelling_test/validate-answer", `{"user_answer":"CAT","audio_file":"cat.wav","attempt_number":2}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["is_correct"])
	assert.Equal(t, 0.8, body["spelling_incorrect_prob"])
	assert.Equal(t, "High", body["spelling_risk"])
	assert.Equal(t, float64(2), body["attempt_number"])

	resp, body = postJSON(t, ts.URL+"/spelling_test/validate-answer", `{"user_answer":"cat","audio_file":"dog.wav"}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Audio file not found in dataset.", body["error"])

	resp, body = postJSON(t, ts.URL+"/spelling_test/validate-answer", `{"audio_file":"cat.wav"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "user_answer", body["field"])

	resp, body = postJSON(t, ts.URL+"/spelling_test/summary", `{"probabilities":[0.5,0.4]}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Emerging indicators", body["overall_risk"])
	assert.Equal(t, "Insufficient attempts", body["assessment_quality"])
}

func TestAudioFiles(t *testing.T) {
	ts, _ := newTestServer(t, nil)

	resp, err := http.Get(ts.URL + "/audio/cat.wav")
	require.NoError(t, err)
	raw, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, bytes.HasPrefix(raw, []byte("RIFF")))

	resp, err = http.Get(ts.URL + "/audio/..%2Fsecret.wav")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func multipartBody(t *testing.T, n int) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for i := range n {
		fw, err := mw.CreateFormFile("files", "sample"+string(rune('a'+i))+".png")
		require.NoError(t, err)
		_, err = fw.Write(pipelinetest.StrokePNG(t, 40, 40))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestHandwritingRoute(t *testing.T) {
	ts, _ := newTestServer(t, nil)
	url := ts.URL + "/handwritten_test/dysgraphia/predict"

	body, ct := multipartBody(t, 2)
	resp, err := http.Post(url, ct, body)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var results []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&results))
	require.Len(t, results, 2)
	assert.Equal(t, "samplea.png", results[0]["Filename"])
	assert.Equal(t, "Non-Dysgraphic", results[0]["Prediction"])
	assert.Equal(t, "Strong Indicators", results[1]["Severity"])

	body, ct = multipartBody(t, 4)
	resp2, err := http.Post(url, ct, body)
	require.NoError(t, err)
	out := decodeBody(t, resp2)
	assert.Equal(t, http.StatusBadRequest, resp2.StatusCode)
	assert.Equal(t, "Please upload 1 to 3 images.", out["error"])

	resp3, err := http.Post(url, "application/json", strings.NewReader(`{}`))
	require.NoError(t, err)
	decodeBody(t, resp3)
	assert.Equal(t, http.StatusBadRequest, resp3.StatusCode)
}

func TestHandwritingRoute_TooLarge(t *testing.T) {
	ts, _ := newTestServer(t, func(c *config.Config) { c.Server.MaxUploadBytes = 64 })

	body, ct := multipartBody(t, 1)
	resp, err := http.Post(ts.URL+"/handwritten_test/dysgraphia/predict", ct, body)
	require.NoError(t, err)
	decodeBody(t, resp)
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
}

func TestPhonoRoutes(t *testing.T) {
	ts, _ := newTestServer(t, nil)

	resp, body := get(t, ts.URL+"/phonospeech_test/phonospeech/questions")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []any{"Say cat", "Say hat"}, body["questions"])

	resp, body = postJSON(t, ts.URL+"/phonospeech_test/phonospeech/predict", `{"question":"Say cat","child_response":"kat"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Emerging", body["risk_level"])
	assert.Contains(t, body, "confidence_score")

	resp, body = postJSON(t, ts.URL+"/phonospeech_test/phonospeech/predict", `{"question":"Say cat"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "child_response", body["field"])
}

func TestPhonoQuestionsMissing(t *testing.T) {
	ts, _ := newTestServer(t, func(c *config.Config) { c.Data.PhonoQuestions = "gone.csv" })

	resp, _ := get(t, ts.URL+"/phonospeech_test/phonospeech/questions")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestNumberRoutes(t *testing.T) {
	ts, _ := newTestServer(t, nil)

	resp, body := get(t, ts.URL+"/numberunderstanding_test/getQuestions")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(3), body["left_number"])
	assert.Equal(t, "right", body["correct_answer"])

	resp, body = postJSON(t, ts.URL+"/numberunderstanding_test/predict",
		`{"left_number":3,"right_number":8,"response_time_sec":7,"user_correct":1}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1), body["at_risk"])
	assert.Equal(t, 0.8, body["confidence"])
	assert.Equal(t, "Strong Indicators", body["speed_category"])

	resp, body = postJSON(t, ts.URL+"/numberunderstanding_test/predict", `{"left_number":3,"right_number":8}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "response_time_sec", body["field"])

	resp, body = postJSON(t, ts.URL+"/numberunderstanding_test/predict",
		`{"left_number":"three","right_number":8,"response_time_sec":1,"user_correct":1}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "left_number", body["field"])
}

func TestArithmeticRoute(t *testing.T) {
	ts, _ := newTestServer(t, nil)
	url := ts.URL + "/arithmetic_test/api/arithmetic/summary"

	resp, body := postJSON(t, url, `{"attempts":[
		{"op1":3,"op2":4,"operation":"+","user_choice":0,"response_time":0.9},
		{"op1":9,"op2":3,"operation":"/","user_choice":1,"response_time":4.0},
		{"op1":5,"op2":2,"operation":"-","user_choice":0,"response_time":2.0}]}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(2), body["total_correct"])
	assert.Equal(t, float64(3), body["total_attempts"])
	assert.Equal(t, "Moderate", body["speed_category"])
	assert.NotEqual(t, "No risk", body["overall_risk"])

	resp, body = postJSON(t, url, `{"attempts":[{"op1":1,"op2":1,"operation":"^","user_choice":0,"response_time":1}]}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "operation", body["field"])
	assert.Equal(t, []any{"*", "+", "-", "/"}, body["allowed"])

	resp, _ = postJSON(t, url, `{"attempts":`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestArithmeticRoute_MissingFields(t *testing.T) {
	ts, _ := newTestServer(t, nil)
	url := ts.URL + "/arithmetic_test/api/arithmetic/summary"

	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"no attempts", `{}`, "attempts"},
		{"no user_choice", `{"attempts":[{"op1":3,"op2":4,"operation":"+","response_time":1}]}`, "attempts[0].user_choice"},
		{"no response_time", `{"attempts":[{"op1":3,"op2":4,"operation":"+","user_choice":0}]}`, "attempts[0].response_time"},
		{"no operands", `{"attempts":[{"op1":3,"op2":4,"operation":"+","user_choice":0,"response_time":1},{"operation":"-","user_choice":1,"response_time":2}]}`, "attempts[1].op1"},
		{"no operation", `{"attempts":[{"op1":3,"op2":4,"user_choice":0,"response_time":1}]}`, "attempts[0].operation"},
		{"null user_choice", `{"attempts":[{"op1":3,"op2":4,"operation":"+","user_choice":null,"response_time":1}]}`, "attempts[0].user_choice"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := postJSON(t, url, tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Equal(t, tt.field, body["field"])
			assert.Contains(t, body["error"], "is required")
		})
	}
}

func TestTracingRoute(t *testing.T) {
	ts, _ := newTestServer(t, nil)
	url := ts.URL + "/letter_tracing/trace"

	resp, body := postJSON(t, url, `{"letter":"b","drawing":"data:image/png;base64,AAAA","duration":3.5,"accuracy":0.8}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "poor", body["label"])
	assert.Equal(t, 3.5, body["duration_seconds"])
	assert.Equal(t, 0.8, body["accuracy"])

	resp, _ = postJSON(t, url, `{"letter":"b","drawing":"","duration":1,"accuracy":1.5}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = postJSON(t, url, `{"letter":"b","drawing":""}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestLetterConfusionRoute(t *testing.T) {
	ts, _ := newTestServer(t, nil)
	url := ts.URL + "/letterconfusion_test/dyslexia/submit_answer/"

	resp, body := postJSON(t, url, `[
		{"question_type":"matching","shown_letters":["b","d","p"],"correct":1,"response_time_ms":1800},
		{"question_type":"same_different","shown_letters":["m","n"],"correct":false,"response_time_ms":2400},
		{"question_type":"matching","shown_letters":["q"],"correct":true,"response_time_ms":900}]`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "0", body["prediction"])
	assert.InDelta(t, 0.7, body["confidence"], 1e-9)
	assert.Equal(t, float64(3), body["attempts"])
	assert.Equal(t, "Minimal (fast screening)", body["assessment_quality"])

	resp, body = postJSON(t, url, `[{"question_type":"unknown","shown_letters":[],"correct":0,"response_time_ms":10}]`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, []any{"matching", "same_different"}, body["allowed"])

	resp, _ = postJSON(t, url, `[{"question_type":"matching","correct":"yes","response_time_ms":10}]`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestLetterConfusionRoute_MissingFields(t *testing.T) {
	ts, _ := newTestServer(t, nil)
	url := ts.URL + "/letterconfusion_test/dyslexia/submit_answer/"

	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"no correct", `[{"question_type":"matching","shown_letters":["b"],"response_time_ms":900}]`, "[0].correct"},
		{"no response time", `[{"question_type":"matching","shown_letters":["b"],"correct":true}]`, "[0].response_time_ms"},
		{"no letters", `[{"question_type":"matching","correct":true,"response_time_ms":900}]`, "[0].shown_letters"},
		{"no question type", `[{"shown_letters":["b"],"correct":true,"response_time_ms":900}]`, "[0].question_type"},
		{"second answer", `[{"question_type":"matching","shown_letters":["b"],"correct":1,"response_time_ms":900},{"question_type":"matching","shown_letters":["d"]}]`, "[1].correct"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := postJSON(t, url, tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Equal(t, tt.field, body["field"])
		})
	}
}

func TestDisabledScreenIsNotRouted(t *testing.T) {
	ts, _ := newTestServer(t, func(c *config.Config) {
		c.Modalities = []string{config.Tracing}
	})

	resp, body := get(t, ts.URL+"/spelling_test/get-audio")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Not Found", body["error"])
}

func TestRun_ShutsDownOnCancel(t *testing.T) {
	cfg := pipelinetest.Layout(t)
	cfg.Modalities = []string{config.Tracing}
	cfg.Server.ShutdownTimeout = time.Second
	logger := log.New(io.Discard, "", 0)
	reg, err := pipeline.Load(cfg, logger, pipeline.Options{})
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- New(reg, cfg, logger).Run(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
