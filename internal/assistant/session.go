package assistant

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"

	"go.uber.org/zap"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Message is one transcript entry. Model messages under active streaming grow
// until the stream closes; everything else is immutable once appended.
type Message struct {
	Role       Role   `json:"role"`
	Text       string `json:"text"`
	IsThinking bool   `json:"isThinking,omitempty"`
}

var (
	ErrEmptyMessage  = errors.New("message is empty")
	ErrBusy          = errors.New("a send is already in flight")
	ErrDictationBusy = errors.New("a dictation is already active")
)

// Session owns one conversational transcript and mediates streamed replies
// into it. The transcript is append-only; at most one send and one dictation
// may be active at a time.
type Session struct {
	mu         sync.Mutex
	transcript []Message
	inFlight   bool
	dictating  bool

	llm     Streamer
	persona *Persona
	log     *zap.SugaredLogger
}

func NewSession(llm Streamer, persona *Persona, log *zap.SugaredLogger) *Session {
	s := &Session{llm: llm, persona: persona, log: log}
	if persona.Greeting != "" {
		s.transcript = append(s.transcript, Message{Role: RoleModel, Text: persona.Greeting})
	}
	return s
}

// Transcript returns a copy of the conversation so far.
func (s *Session) Transcript() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.transcript))
	copy(out, s.transcript)
	return out
}

// Send appends the user message plus a thinking placeholder, then streams the
// reply into the placeholder chunk by chunk, calling onDelta for each chunk.
// Remote failures are absorbed: the persona's error reply is appended as a
// fresh model message and Send still returns nil. Only local misuse (empty
// text, send already in flight) is an error, and neither touches the
// transcript.
func (s *Session) Send(ctx context.Context, text string, onDelta func(string)) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyMessage
	}

	s.mu.Lock()
	if s.inFlight {
		s.mu.Unlock()
		return ErrBusy
	}
	s.inFlight = true
	s.transcript = append(s.transcript, Message{Role: RoleUser, Text: text})
	s.transcript = append(s.transcript, Message{Role: RoleModel, IsThinking: true})
	// History for the remote call excludes the placeholder.
	history := make([]Message, len(s.transcript)-1)
	copy(history, s.transcript[:len(s.transcript)-1])
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.inFlight = false
		s.mu.Unlock()
	}()

	stream, err := s.llm.Stream(ctx, s.persona, history)
	if err != nil {
		s.failSend("stream open failed", err, onDelta)
		return nil
	}
	defer stream.Close()

	var builder strings.Builder
	for {
		chunk, err := stream.Recv()
		if err == io.EOF {
			break
		}
		if err != nil {
			s.failSend("stream recv failed", err, onDelta)
			return nil
		}
		builder.WriteString(chunk)
		s.mu.Lock()
		last := len(s.transcript) - 1
		s.transcript[last].Text = builder.String()
		s.transcript[last].IsThinking = false
		s.mu.Unlock()
		if onDelta != nil {
			onDelta(chunk)
		}
	}
	return nil
}

// failSend freezes the placeholder and appends the persona's error reply.
// The placeholder keeps whatever text it accumulated; only its transient
// thinking flag is cleared so a later send owns the sole thinking entry.
func (s *Session) failSend(msg string, err error, onDelta func(string)) {
	s.log.Errorw(msg, "error", err)
	s.mu.Lock()
	last := len(s.transcript) - 1
	s.transcript[last].IsThinking = false
	s.transcript = append(s.transcript, Message{Role: RoleModel, Text: s.persona.ErrorReply})
	s.mu.Unlock()
	if onDelta != nil {
		onDelta(s.persona.ErrorReply)
	}
}

// BeginDictation reserves the session's single dictation slot.
func (s *Session) BeginDictation() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dictating {
		return ErrDictationBusy
	}
	s.dictating = true
	return nil
}

func (s *Session) EndDictation() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dictating = false
}
