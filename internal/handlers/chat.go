package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"chatbot-backend/internal/metrics"
	"chatbot-backend/internal/middleware"
	"chatbot-backend/internal/models"
	"chatbot-backend/internal/services"
)

const maxBodyBytes = 1 << 20

type providerResolver interface {
	Resolve(req models.ChatRequest) (services.Provider, error)
}

type ChatHandler struct {
	providers providerResolver
	logger    zerolog.Logger
}

func NewChatHandler(providers providerResolver, logger zerolog.Logger) *ChatHandler {
	return &ChatHandler{
		providers: providers,
		logger:    logger,
	}
}

// Chat relays one message and returns the whole reply.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeBody(w, r)
	if !ok {
		return
	}

	provider, ok := h.resolve(w, r, req, metrics.ModeOnce)
	if !ok {
		return
	}

	reply, err := provider.Send(r.Context(), req.Messages())
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("provider", provider.Name()).
			Str("request_id", middleware.GetRequestID(r)).
			Msg("chat relay failed")
		metrics.RecordRelay(provider.Name(), metrics.ModeOnce, metrics.OutcomeUpstreamErr)
		writeJSON(w, http.StatusInternalServerError, errorResp(services.ChatErrorMessage, r))
		return
	}

	metrics.RecordRelay(provider.Name(), metrics.ModeOnce, metrics.OutcomeOK)
	writeJSON(w, http.StatusOK, models.ChatResponse{Response: reply})
}

// Stream relays a JSON body as an SSE stream.
func (h *ChatHandler) Stream(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeBody(w, r)
	if !ok {
		return
	}
	h.stream(w, r, req)
}

// StreamQuery serves EventSource clients, which can only issue GET requests.
// A malformed history parameter is treated as an empty history.
func (h *ChatHandler) StreamQuery(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	h.stream(w, r, models.ChatRequest{
		Message:  q.Get("message"),
		History:  models.ParseHistory(q.Get("history")),
		Provider: q.Get("provider"),
	})
}

func (h *ChatHandler) stream(w http.ResponseWriter, r *http.Request, req models.ChatRequest) {
	provider, ok := h.resolve(w, r, req, metrics.ModeStream)
	if !ok {
		return
	}

	sse := newSSEWriter(w)
	res := services.RelayStream(r.Context(), provider, req.Messages(), sse.Send)
	metrics.StreamChunks.WithLabelValues(provider.Name()).Add(float64(res.Chunks))

	log := h.logger.With().
		Str("provider", provider.Name()).
		Str("request_id", middleware.GetRequestID(r)).
		Int("chunks", res.Chunks).
		Logger()

	switch {
	case res.WriteErr != nil:
		log.Warn().Err(res.WriteErr).Msg("stream client disconnected")
		metrics.RecordRelay(provider.Name(), metrics.ModeStream, metrics.OutcomeClientGone)
	case res.Err != nil:
		log.Error().Err(res.Err).Msg("stream relay failed")
		metrics.RecordRelay(provider.Name(), metrics.ModeStream, metrics.OutcomeUpstreamErr)
	default:
		log.Debug().Msg("stream relay completed")
		metrics.RecordRelay(provider.Name(), metrics.ModeStream, metrics.OutcomeOK)
	}
}

func (h *ChatHandler) decodeBody(w http.ResponseWriter, r *http.Request) (models.ChatRequest, bool) {
	var req models.ChatRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("Invalid request body", r))
		return req, false
	}
	return req, true
}

// resolve writes a 400 and returns false when req cannot be relayed.
func (h *ChatHandler) resolve(w http.ResponseWriter, r *http.Request, req models.ChatRequest, mode string) (services.Provider, bool) {
	provider, err := h.providers.Resolve(req)
	if err == nil {
		return provider, true
	}

	var verr *services.ValidationError
	if errors.As(err, &verr) {
		metrics.RecordRelay(metrics.ProviderUnknown, mode, metrics.OutcomeInvalid)
		writeJSON(w, http.StatusBadRequest, errorResp(verr.Message, r))
		return nil, false
	}

	h.logger.Error().Err(err).Str("request_id", middleware.GetRequestID(r)).Msg("provider lookup failed")
	writeJSON(w, http.StatusInternalServerError, errorResp(services.ChatErrorMessage, r))
	return nil, false
}
