package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"carai-site-backend/internal/assistant"
	"carai-site-backend/internal/types"
)

func (s *Server) handleChatStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		s.writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}
	var req types.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		s.writeError(w, http.StatusBadRequest, "message is required")
		return
	}
	sid := getOrCreateSessionID(r, w)
	session := s.session(sid)

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Session-Id", sid)
	w.Header().Set("Cache-Control", "no-cache")

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.StreamTimeout)
	defer cancel()

	err := session.Send(ctx, req.Message, func(chunk string) {
		_, _ = w.Write([]byte(chunk))
		flusher.Flush()
	})
	switch {
	case errors.Is(err, assistant.ErrBusy):
		// nothing has been written yet; the guard rejects before streaming
		s.writeError(w, http.StatusConflict, "a reply is already in progress")
	case errors.Is(err, assistant.ErrEmptyMessage):
		s.writeError(w, http.StatusBadRequest, "message is required")
	case err != nil:
		s.log.Errorw("chat stream failed", "session", sid, "error", err)
		s.writeError(w, http.StatusBadGateway, "chat stream failed")
	}
}

func (s *Server) handleChatHistory(w http.ResponseWriter, r *http.Request) {
	sid := getOrCreateSessionID(r, w)
	session := s.session(sid)
	w.Header().Set("X-Session-Id", sid)
	s.writeJSON(w, http.StatusOK, types.ChatHistoryResponse{
		SessionID: sid,
		Messages:  session.Transcript(),
	})
}

func (s *Server) handleDictate(w http.ResponseWriter, r *http.Request) {
	if s.stt == nil {
		s.writeError(w, http.StatusBadRequest, "speech recognition is not available")
		return
	}
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	sid := getOrCreateSessionID(r, w)
	session := s.session(sid)

	// one dictation at a time per session
	if err := session.BeginDictation(); err != nil {
		s.writeError(w, http.StatusConflict, "a dictation is already active")
		return
	}
	defer session.EndDictation()

	file, header, err := r.FormFile("file")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "audio file is required (field 'file')")
		return
	}
	defer file.Close()

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.TranscribeTimeout)
	defer cancel()

	transcript, err := s.stt.Transcribe(ctx, file, header.Filename)
	if err != nil {
		s.log.Errorw("transcription failed", "session", sid, "error", err)
		s.writeError(w, http.StatusBadGateway, "transcription failed")
		return
	}
	if transcript == "" {
		s.writeError(w, http.StatusBadGateway, "empty transcription")
		return
	}

	// The transcript goes back to the client's input buffer; it is not part
	// of the conversation until the visitor sends it.
	w.Header().Set("X-Session-Id", sid)
	s.writeJSON(w, http.StatusOK, types.DictationResponse{SessionID: sid, Transcript: transcript})
}

func (s *Server) handleDescribe(w http.ResponseWriter, r *http.Request) {
	var req types.DescribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		s.writeError(w, http.StatusBadRequest, "title is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.GenerateTimeout)
	defer cancel()

	desc := assistant.DescribeProject(ctx, s.llm, s.log, req.Title, req.TechStack)
	s.writeJSON(w, http.StatusOK, types.DescribeResponse{Description: desc})
}
