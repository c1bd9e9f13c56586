package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"chatbot-backend/internal/metrics"
	"chatbot-backend/internal/models"
	"chatbot-backend/internal/services"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

const maxFrameBytes = 1 << 20

type providerResolver interface {
	Resolve(req models.ChatRequest) (services.Provider, error)
}

// Hub serves chat streams over WebSocket. Each connection handles one
// request at a time; the hub only tracks open connections for shutdown.
type Hub struct {
	mu          sync.Mutex
	connections map[uuid.UUID]*websocket.Conn
	providers   providerResolver
	logger      zerolog.Logger
}

func NewHub(providers providerResolver, logger zerolog.Logger) *Hub {
	return &Hub{
		connections: make(map[uuid.UUID]*websocket.Conn),
		providers:   providers,
		logger:      logger,
	}
}

func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	conn.SetReadLimit(maxFrameBytes)

	id := uuid.New()
	h.registerConnection(id, conn)
	defer h.unregisterConnection(id)

	log := h.logger.With().Str("conn_id", id.String()).Logger()
	log.Debug().Msg("websocket connected")

	// Hijacked connections outlive r.Context(), so a peer that goes away
	// cancels ctx from the read side instead.
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	frames := h.readFrames(ctx, cancel, conn, log)

	for data := range frames {
		var req models.ChatRequest
		if err := json.Unmarshal(data, &req); err != nil {
			if conn.WriteJSON(models.ErrorEvent("Invalid request body")) != nil {
				return
			}
			continue
		}

		provider, err := h.providers.Resolve(req)
		if err != nil {
			msg := services.ChatErrorMessage
			var verr *services.ValidationError
			if errors.As(err, &verr) {
				msg = verr.Message
			}
			metrics.RecordRelay(metrics.ProviderUnknown, metrics.ModeWebSocketStream, metrics.OutcomeInvalid)
			if conn.WriteJSON(models.ErrorEvent(msg)) != nil {
				return
			}
			continue
		}

		res := services.RelayStream(ctx, provider, req.Messages(), func(c models.StreamChunk) error {
			return conn.WriteJSON(c)
		})
		metrics.StreamChunks.WithLabelValues(provider.Name()).Add(float64(res.Chunks))

		switch {
		case res.WriteErr != nil:
			log.Warn().Err(res.WriteErr).Str("provider", provider.Name()).Msg("websocket client gone mid-stream")
			metrics.RecordRelay(provider.Name(), metrics.ModeWebSocketStream, metrics.OutcomeClientGone)
			return
		case ctx.Err() != nil:
			log.Warn().Str("provider", provider.Name()).Msg("websocket client gone mid-stream")
			metrics.RecordRelay(provider.Name(), metrics.ModeWebSocketStream, metrics.OutcomeClientGone)
			return
		case res.Err != nil:
			log.Error().Err(res.Err).Str("provider", provider.Name()).Msg("websocket stream relay failed")
			metrics.RecordRelay(provider.Name(), metrics.ModeWebSocketStream, metrics.OutcomeUpstreamErr)
		default:
			metrics.RecordRelay(provider.Name(), metrics.ModeWebSocketStream, metrics.OutcomeOK)
		}
	}
}

// readFrames reads on its own goroutine so a dropped peer is noticed while
// a reply is still streaming. The channel closes when reading stops.
func (h *Hub) readFrames(ctx context.Context, cancel context.CancelFunc, conn *websocket.Conn, log zerolog.Logger) <-chan []byte {
	frames := make(chan []byte, 8)
	go func() {
		defer close(frames)
		defer cancel()
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					log.Warn().Err(err).Msg("websocket read failed")
				}
				return
			}
			select {
			case frames <- data:
			case <-ctx.Done():
				return
			}
		}
	}()
	return frames
}

// Count returns the number of open connections.
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.connections)
}

// CloseAll sends a going-away close frame to every open connection.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, conn := range h.connections {
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(time.Second))
		conn.Close()
		delete(h.connections, id)
	}
}

func (h *Hub) registerConnection(id uuid.UUID, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.connections[id] = conn
}

func (h *Hub) unregisterConnection(id uuid.UUID) {
	h.mu.Lock()
	conn, ok := h.connections[id]
	delete(h.connections, id)
	h.mu.Unlock()
	if ok {
		conn.Close()
	}
}
