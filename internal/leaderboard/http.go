package leaderboard

import (
	"bytes"
	"net/http"
	"strconv"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	httperrors "github.com/gokatarajesh/quizboard/pkg/http/errors"
	ws "github.com/gokatarajesh/quizboard/pkg/http/ws"
)

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	errCodeUnsupportedMessage = "unsupported_message"
)

// HTTPHandler exposes the leaderboard, its export and the live feed.
type HTTPHandler struct {
	svc      *Service
	hub      *ws.Hub
	upgrader websocket.Upgrader
	logger   zerolog.Logger
}

// NewHTTPHandler constructs a leaderboard HTTP handler. Browser websocket
// clients are accepted from allowedOrigins; "*" allows any origin.
func NewHTTPHandler(svc *Service, hub *ws.Hub, allowedOrigins []string, logger zerolog.Logger) *HTTPHandler {
	return &HTTPHandler{
		svc: svc,
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
		logger: logger.With().Str("component", "leaderboard_http").Logger(),
	}
}

// HandleGet handles GET /leaderboard
func (h *HTTPHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	entries, err := h.svc.Leaderboard(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("leaderboard fetch failed")
		httperrors.RespondInternalError(w, httperrors.ErrCodeLeaderboardFetchFailed, err.Error())
		return
	}
	httperrors.RespondJSON(w, http.StatusOK, entries)
}

// HandleExport handles GET /leaderboard/export
func (h *HTTPHandler) HandleExport(w http.ResponseWriter, r *http.Request) {
	entries, err := h.svc.Leaderboard(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("leaderboard fetch failed")
		httperrors.RespondInternalError(w, httperrors.ErrCodeLeaderboardFetchFailed, err.Error())
		return
	}

	var buf bytes.Buffer
	if err := WriteWorkbook(&buf, entries); err != nil {
		h.logger.Error().Err(err).Msg("leaderboard export failed")
		httperrors.RespondInternalError(w, httperrors.ErrCodeLeaderboardExportFailed, "Failed to export leaderboard")
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="leaderboard.xlsx"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// HandleWebSocket handles GET /leaderboard/ws. Subscribers receive a
// leaderboard_update message for every new high score. The only client
// message understood is ping; anything else is answered with an error message.
func (h *HTTPHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	c := ws.NewConnection(conn, h.logger)
	id := h.hub.Register(c)
	go c.WritePump()

	c.ReadPump(func(msg ws.Message) error {
		switch msg.Type {
		case ws.TypePing:
			return c.Send(ws.Message{Type: ws.TypePong})
		default:
			reply, err := ws.NewMessage(ws.TypeError, ws.ErrorPayload{
				Code:    errCodeUnsupportedMessage,
				Message: "unsupported message type: " + msg.Type,
			})
			if err != nil {
				return err
			}
			return c.Send(reply)
		}
	})
	h.hub.Unregister(id)
}

func originChecker(allowed []string) func(*http.Request) bool {
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		set[o] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := set[origin]
		return ok
	}
}
