package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"carai-site-backend/internal/assistant"
	"carai-site-backend/internal/config"
	"carai-site-backend/internal/intake"
	"carai-site-backend/internal/store"
	"carai-site-backend/internal/types"
)

type stubChunks struct {
	chunks []string
	i      int
}

func (s *stubChunks) Recv() (string, error) {
	if s.i < len(s.chunks) {
		c := s.chunks[s.i]
		s.i++
		return c, nil
	}
	return "", io.EOF
}

func (s *stubChunks) Close() error { return nil }

type stubLLM struct {
	chunks    []string
	streamErr error
	reply     string
	genErr    error
}

func (s *stubLLM) Stream(ctx context.Context, p *assistant.Persona, history []assistant.Message) (assistant.ChunkReader, error) {
	if s.streamErr != nil {
		return nil, s.streamErr
	}
	return &stubChunks{chunks: s.chunks}, nil
}

func (s *stubLLM) Generate(ctx context.Context, prompt string) (string, error) {
	return s.reply, s.genErr
}

type stubSTT struct {
	transcript string
	err        error
}

func (s *stubSTT) Transcribe(ctx context.Context, audio io.Reader, filename string) (string, error) {
	return s.transcript, s.err
}

type memLeads struct {
	mu    sync.Mutex
	leads []store.Lead
	err   error
}

func (m *memLeads) SaveLead(l store.Lead) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.leads = append(m.leads, l)
	return nil
}

func (m *memLeads) RecentLeads(limit int) ([]store.Lead, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]store.Lead, 0, len(m.leads))
	for i := len(m.leads) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.leads[i])
	}
	return out, nil
}

type memTracker struct {
	mu     sync.Mutex
	events []string
}

func (m *memTracker) Track(event string, props map[string]any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
}

func (m *memTracker) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.events)
}

func testConfig() config.Config {
	return config.Config{
		AllowedOrigin:     "*",
		StreamTimeout:     time.Second,
		GenerateTimeout:   time.Second,
		TranscribeTimeout: time.Second,
		SuccessHold:       10 * time.Millisecond,
	}
}

func newTestServer(llm *stubLLM, stt assistant.Transcriber, leads store.LeadStore, tracker intake.Tracker) *Server {
	persona := &assistant.Persona{
		System:     "You are a test assistant.",
		Greeting:   "Hi! Ask me anything.",
		ErrorReply: "Please try again later.",
	}
	return newServer(testConfig(), zap.NewNop().Sugar(), llm, stt, persona, leads, tracker)
}

func doJSON(t *testing.T, s *Server, method, path, sid string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if sid != "" {
		req.Header.Set("X-Session-Id", sid)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	s := newTestServer(&stubLLM{}, nil, &memLeads{}, nil)
	rec := doJSON(t, s, http.MethodGet, "/api/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestChatStreamWritesChunks(t *testing.T) {
	llm := &stubLLM{chunks: []string{"We offer ", "web services."}}
	s := newTestServer(llm, nil, &memLeads{}, nil)

	rec := doJSON(t, s, http.MethodPost, "/api/chat/stream", "s_chat", types.ChatRequest{Message: "What do you offer?"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "We offer web services.", rec.Body.String())
	assert.Equal(t, "s_chat", rec.Header().Get("X-Session-Id"))
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/plain")
}

func TestChatStreamRejectsEmptyMessage(t *testing.T) {
	s := newTestServer(&stubLLM{}, nil, &memLeads{}, nil)
	rec := doJSON(t, s, http.MethodPost, "/api/chat/stream", "", types.ChatRequest{Message: "   "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChatStreamFailureDeliversApology(t *testing.T) {
	llm := &stubLLM{streamErr: errors.New("upstream down")}
	s := newTestServer(llm, nil, &memLeads{}, nil)

	rec := doJSON(t, s, http.MethodPost, "/api/chat/stream", "s_err", types.ChatRequest{Message: "hello"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Please try again later.", rec.Body.String())
}

func TestChatHistorySharesSession(t *testing.T) {
	llm := &stubLLM{chunks: []string{"Sure thing."}}
	s := newTestServer(llm, nil, &memLeads{}, nil)

	rec := doJSON(t, s, http.MethodPost, "/api/chat/stream", "s_hist", types.ChatRequest{Message: "hello"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, s, http.MethodGet, "/api/chat/history", "s_hist", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var hist types.ChatHistoryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &hist))
	assert.Equal(t, "s_hist", hist.SessionID)
	require.Len(t, hist.Messages, 3)
	assert.Equal(t, "Hi! Ask me anything.", hist.Messages[0].Text)
	assert.Equal(t, "hello", hist.Messages[1].Text)
	assert.Equal(t, "Sure thing.", hist.Messages[2].Text)
}

func TestChatHistoryNewSessionHasGreeting(t *testing.T) {
	s := newTestServer(&stubLLM{}, nil, &memLeads{}, nil)
	rec := doJSON(t, s, http.MethodGet, "/api/chat/history", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var hist types.ChatHistoryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &hist))
	assert.NotEmpty(t, hist.SessionID)
	require.Len(t, hist.Messages, 1)
	assert.Equal(t, "Hi! Ask me anything.", hist.Messages[0].Text)
}

func TestDictate(t *testing.T) {
	s := newTestServer(&stubLLM{}, &stubSTT{transcript: "hello from the mic"}, &memLeads{}, nil)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "note.webm")
	require.NoError(t, err)
	_, err = fw.Write([]byte("fake audio bytes"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/chat/dictate", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("X-Session-Id", "s_mic")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp types.DictationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "hello from the mic", resp.Transcript)

	// dictation does not touch the transcript
	rec = doJSON(t, s, http.MethodGet, "/api/chat/history", "s_mic", nil)
	var hist types.ChatHistoryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &hist))
	assert.Len(t, hist.Messages, 1)
}

func TestDictateUnavailable(t *testing.T) {
	s := newTestServer(&stubLLM{}, nil, &memLeads{}, nil)
	rec := doJSON(t, s, http.MethodPost, "/api/chat/dictate", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDescribe(t *testing.T) {
	llm := &stubLLM{reply: "A sleek portfolio built with modern tooling."}
	s := newTestServer(llm, nil, &memLeads{}, nil)

	rec := doJSON(t, s, http.MethodPost, "/api/projects/describe", "",
		types.DescribeRequest{Title: "NeuralCanvas", TechStack: []string{"React", "Go"}})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp types.DescribeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "A sleek portfolio built with modern tooling.", resp.Description)
}

func TestDescribeFallsBackOnError(t *testing.T) {
	llm := &stubLLM{genErr: errors.New("quota exceeded")}
	s := newTestServer(llm, nil, &memLeads{}, nil)

	rec := doJSON(t, s, http.MethodPost, "/api/projects/describe", "",
		types.DescribeRequest{Title: "NeuralCanvas"})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp types.DescribeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Project description currently unavailable.", resp.Description)
}

func TestContactFormAppliesServiceParam(t *testing.T) {
	s := newTestServer(&stubLLM{}, nil, &memLeads{}, nil)
	rec := doJSON(t, s, http.MethodGet, "/api/contact/form?service=AI+Assistant", "s_form", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var view intake.FormView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, intake.ServiceAIAugmented, view.ServiceType)
	assert.Equal(t, intake.StateIdle, view.State)
	assert.NotEmpty(t, view.CommonFields)
}

func TestContactServiceEndpoint(t *testing.T) {
	s := newTestServer(&stubLLM{}, nil, &memLeads{}, nil)

	rec := doJSON(t, s, http.MethodPost, "/api/contact/service", "s_svc", types.ServiceRequest{Service: "support"})
	require.Equal(t, http.StatusOK, rec.Code)
	var view intake.FormView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, intake.ServiceSupport, view.ServiceType)

	rec = doJSON(t, s, http.MethodPost, "/api/contact/service", "s_svc", types.ServiceRequest{Service: "gardening"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestContactFormFullLifecycle(t *testing.T) {
	leads := &memLeads{}
	tracker := &memTracker{}
	s := newTestServer(&stubLLM{}, nil, leads, tracker)
	sid := "s_lifecycle"

	set := func(name, value string) {
		rec := doJSON(t, s, http.MethodPost, "/api/contact/field", sid,
			types.FieldRequest{Name: name, Value: value})
		require.Equal(t, http.StatusOK, rec.Code)
	}
	set("fullName", "Jane Doe")
	set("email", "jane@example.com")
	set("goal", "A landing page for my bakery")

	rec := doJSON(t, s, http.MethodPost, "/api/contact/submit", sid, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp types.SubmitResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.NotEmpty(t, resp.Message)

	require.Len(t, leads.leads, 1)
	lead := leads.leads[0]
	assert.Equal(t, "one-page", lead.ServiceType)
	assert.Equal(t, "jane@example.com", lead.Email)
	assert.Equal(t, "A landing page for my bakery", lead.Message)
	assert.Equal(t, 1, tracker.count())
}

func TestContactSubmitValidationErrors(t *testing.T) {
	leads := &memLeads{}
	s := newTestServer(&stubLLM{}, nil, leads, nil)
	sid := "s_invalid"

	rec := doJSON(t, s, http.MethodPost, "/api/contact/submit", sid, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp types.SubmitResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Errors, "fullName")
	assert.Contains(t, resp.Errors, "email")
	assert.Empty(t, leads.leads)
}

func TestContactToggleListField(t *testing.T) {
	s := newTestServer(&stubLLM{}, nil, &memLeads{}, nil)
	sid := "s_toggle"
	checked := true

	rec := doJSON(t, s, http.MethodPost, "/api/contact/field", sid,
		types.FieldRequest{Name: "estPages", Value: "Home", Checked: &checked})
	require.Equal(t, http.StatusOK, rec.Code)

	var view intake.FormView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, []any{"Home"}, view.Values["estPages"])
}

func TestContactDirectSubmission(t *testing.T) {
	leads := &memLeads{}
	tracker := &memTracker{}
	s := newTestServer(&stubLLM{}, nil, leads, tracker)

	body := map[string]any{
		"serviceType": "automation-only",
		"fullName":    "Jane Doe",
		"email":       "jane@example.com",
		"whatsapp":    "+18685550000",
		"aiGoal":      "Automate my invoicing",
	}
	rec := doJSON(t, s, http.MethodPost, "/api/contact", "", body)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp types.SubmitResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)

	require.Len(t, leads.leads, 1)
	assert.Equal(t, "automation-only", leads.leads[0].ServiceType)
	assert.Equal(t, "Automate my invoicing", leads.leads[0].Message)
	assert.Equal(t, 1, tracker.count())
}

func TestContactDirectValidation(t *testing.T) {
	leads := &memLeads{}
	s := newTestServer(&stubLLM{}, nil, leads, nil)

	rec := doJSON(t, s, http.MethodPost, "/api/contact", "", map[string]any{
		"fullName": "Jane Doe",
		"email":    "not-an-email",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp types.SubmitResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Errors, "email")
	assert.Empty(t, leads.leads)
}

func TestRecentLeads(t *testing.T) {
	leads := &memLeads{}
	s := newTestServer(&stubLLM{}, nil, leads, nil)
	require.NoError(t, leads.SaveLead(store.NewLead(intake.Payload{
		ServiceType: intake.ServiceOnePage,
		FullName:    "Jane Doe",
		Email:       "jane@example.com",
	})))

	rec := doJSON(t, s, http.MethodGet, "/api/leads/recent", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Leads []store.Lead `json:"leads"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Leads, 1)
	assert.Equal(t, "jane@example.com", resp.Leads[0].Email)
}

func TestSessionCookieIssuedWhenMissing(t *testing.T) {
	s := newTestServer(&stubLLM{}, nil, &memLeads{}, nil)
	rec := doJSON(t, s, http.MethodGet, "/api/chat/history", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	assert.Equal(t, CookieName, cookies[0].Name)
	assert.True(t, strings.HasPrefix(cookies[0].Value, "s_"))
}
