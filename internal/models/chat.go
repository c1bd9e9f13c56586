package models

import (
	"encoding/json"
	"strings"
)

const (
	RoleUser  = "user"
	RoleModel = "model"
)

// Message is a single turn handed to a provider.
type Message struct {
	Role    string `json:"role"` // "user" or "model"
	Content string `json:"content"`
}

type Part struct {
	Text string `json:"text"`
}

// HistoryEntry is a transcript turn as the UI sends it.
type HistoryEntry struct {
	Role  string `json:"role"`
	Parts []Part `json:"parts"`
}

// Text returns the first part's text. Additional parts are ignored.
func (e HistoryEntry) Text() string {
	if len(e.Parts) == 0 {
		return ""
	}
	return e.Parts[0].Text
}

// ChatRequest is the payload sent to the chat endpoints.
type ChatRequest struct {
	Message  string         `json:"message"`
	History  []HistoryEntry `json:"history"`
	Provider string         `json:"provider,omitempty"`
}

// Messages maps the history in order and appends the new user message.
// The request's history slice is never modified.
func (r ChatRequest) Messages() []Message {
	msgs := make([]Message, 0, len(r.History)+1)
	for _, entry := range r.History {
		msgs = append(msgs, Message{Role: entry.Role, Content: entry.Text()})
	}
	return append(msgs, Message{Role: RoleUser, Content: r.Message})
}

// ParseHistory decodes the history query parameter of the GET stream route.
// Malformed input yields an empty history.
func ParseHistory(raw string) []HistoryEntry {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var history []HistoryEntry
	if err := json.Unmarshal([]byte(raw), &history); err != nil {
		return nil
	}
	return history
}

// ChatResponse is the reply from the non-streaming endpoint.
type ChatResponse struct {
	Response string `json:"response"`
}

// ErrorResponse is the body of every failed JSON request.
type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}
