package handlers

import (
	"log/slog"
	"net/http"

	"github.com/Dosada05/poker-club/broadcast"
	"github.com/gorilla/websocket"
)

type WebSocketHandler struct {
	responder
	hub      *broadcast.Hub
	upgrader websocket.Upgrader
}

// NewWebSocketHandler accepts connections from allowedOrigins; "*" allows any origin.
func NewWebSocketHandler(hub *broadcast.Hub, allowedOrigins []string, logger *slog.Logger) *WebSocketHandler {
	h := &WebSocketHandler{responder: responder{logger: logger}, hub: hub}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(allowedOrigins),
	}
	return h
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, a := range allowed {
			if a == "*" || a == origin {
				return true
			}
		}
		return false
	}
}

// ServeScoreboard обслуживает /ws/scoreboard.
func (h *WebSocketHandler) ServeScoreboard(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, broadcast.ScoreboardRoom)
}

// ServeTournament обслуживает /ws/tournaments/{tournamentID}.
func (h *WebSocketHandler) ServeTournament(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getPathParam(r, "tournamentID")
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}
	h.serve(w, r, broadcast.TournamentRoom(tournamentID))
}

func (h *WebSocketHandler) serve(w http.ResponseWriter, r *http.Request, room string) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade сам отвечает клиенту ошибкой
		h.logger.WarnContext(r.Context(), "websocket upgrade failed", slog.String("room", room), slog.Any("error", err))
		return
	}

	client := broadcast.NewClient(h.hub, conn, room)
	if !h.hub.Join(client) {
		h.logger.InfoContext(r.Context(), "websocket hub stopped, connection rejected", slog.String("room", room))
		_ = conn.Close()
		return
	}

	go client.WritePump()
	go client.ReadPump()
}
