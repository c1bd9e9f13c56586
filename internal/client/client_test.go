package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatbot-backend/internal/models"
)

func newServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL+"/", srv.Client())
}

func TestChat_Success(t *testing.T) {
	var got models.ChatRequest
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		json.NewEncoder(w).Encode(models.ChatResponse{Response: "Paris."})
	})

	reply, err := c.Chat(context.Background(), models.ChatRequest{
		Message:  "Capital of France?",
		History:  []models.HistoryEntry{{Role: "user", Parts: []models.Part{{Text: "Hi"}}}},
		Provider: "ollama",
	})

	require.NoError(t, err)
	assert.Equal(t, "Paris.", reply)
	assert.Equal(t, "Capital of France?", got.Message)
	assert.Equal(t, "ollama", got.Provider)
	require.Len(t, got.History, 1)
}

func TestChat_ErrorCarriesServerMessage(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(models.ErrorResponse{Error: "An error occurred while processing your request"})
	})

	_, err := c.Chat(context.Background(), models.ChatRequest{Message: "x"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
	assert.Contains(t, err.Error(), "An error occurred while processing your request")
}

func writeEvents(w http.ResponseWriter, events ...models.StreamChunk) {
	w.Header().Set("Content-Type", "text/event-stream")
	for _, e := range events {
		data, _ := json.Marshal(e)
		fmt.Fprintf(w, "data: %s\n\n", data)
	}
}

func TestStream_Success(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/stream", r.URL.Path)
		writeEvents(w, models.ChunkEvent("Hel"), models.ChunkEvent("lo"), models.DoneEvent())
	})

	var chunks []string
	err := c.Stream(context.Background(), models.ChatRequest{Message: "hi"}, func(s string) {
		chunks = append(chunks, s)
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"Hel", "lo"}, chunks)
}

func TestStream_ErrorEvent(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeEvents(w, models.ChunkEvent("partial"), models.ErrorEvent("An error occurred during streaming"))
	})

	var chunks []string
	err := c.Stream(context.Background(), models.ChatRequest{Message: "hi"}, func(s string) {
		chunks = append(chunks, s)
	})

	require.ErrorIs(t, err, ErrStreamFailed)
	assert.Contains(t, err.Error(), "An error occurred during streaming")
	assert.Equal(t, []string{"partial"}, chunks)
}

func TestStream_Incomplete(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeEvents(w, models.ChunkEvent("only"))
	})

	err := c.Stream(context.Background(), models.ChatRequest{Message: "hi"}, func(string) {})

	assert.ErrorIs(t, err, ErrStreamIncomplete)
}

func TestStream_ValidationError(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(models.ErrorResponse{Error: "Message is required"})
	})

	err := c.Stream(context.Background(), models.ChatRequest{}, func(string) {})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "Message is required")
}
