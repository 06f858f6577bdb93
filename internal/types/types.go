package types

import "carai-site-backend/internal/assistant"

type ChatRequest struct {
	Message string `json:"message"`
}

type ChatHistoryResponse struct {
	SessionID string              `json:"sessionId"`
	Messages  []assistant.Message `json:"messages"`
}

type DictationResponse struct {
	SessionID  string `json:"sessionId"`
	Transcript string `json:"transcript"`
}

type DescribeRequest struct {
	Title     string   `json:"title"`
	TechStack []string `json:"techStack"`
}

type DescribeResponse struct {
	Description string `json:"description"`
}

type ServiceRequest struct {
	Service string `json:"service"`
}

// FieldRequest sets a scalar field, or toggles a list entry when Checked is
// present.
type FieldRequest struct {
	Name    string `json:"name"`
	Value   string `json:"value"`
	Checked *bool  `json:"checked,omitempty"`
}

type SubmitResponse struct {
	Success bool              `json:"success"`
	Message string            `json:"message,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
