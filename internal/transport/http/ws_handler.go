package http

import (
	"net/http"

	"fanbase-quiz-service/internal/app"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// LeaderboardWSHandler streams leaderboard snapshots to fans watching the
// scoreboard live: one snapshot on subscribe, then one after every recorded
// completion.
type LeaderboardWSHandler struct {
	leaderboard *app.LeaderboardService
	feed        *app.LeaderboardFeed
	log         *zap.Logger
	upgrader    websocket.Upgrader
}

func NewLeaderboardWSHandler(leaderboard *app.LeaderboardService, feed *app.LeaderboardFeed, log *zap.Logger) *LeaderboardWSHandler {
	return &LeaderboardWSHandler{
		leaderboard: leaderboard,
		feed:        feed,
		log:         log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

func (h *LeaderboardWSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("ws upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	updates, cancel := h.feed.Subscribe()
	defer cancel()

	initial, err := h.leaderboard.Compute(r.Context())
	if err != nil {
		h.log.Warn("initial leaderboard snapshot failed", zap.Error(err))
		return
	}
	if err := conn.WriteJSON(initial); err != nil {
		return
	}

	// Reads only detect the peer closing; clients never send data.
	readerDone := make(chan struct{})
	go func() {
		defer close(readerDone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case update, ok := <-updates:
			if !ok {
				return
			}
			if err := conn.WriteJSON(update); err != nil {
				return
			}
		case <-readerDone:
			return
		case <-r.Context().Done():
			return
		}
	}
}
