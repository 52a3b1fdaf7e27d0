package http

import (
	"net/http"

	"fanbase-quiz-service/internal/app"
	"go.uber.org/zap"
)

func NewRouter(quiz *app.QuizService, leaderboard *app.LeaderboardService, feed *app.LeaderboardFeed, auth *TokenVerifier, log *zap.Logger) http.Handler {
	api := NewAPI(quiz, leaderboard, auth, log)
	ws := NewLeaderboardWSHandler(leaderboard, feed, log)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/api/questions", api.HandleQuestions)
	mux.HandleFunc("/api/session", api.HandleSession)
	mux.HandleFunc("/api/session/restart", api.HandleRestart)
	mux.HandleFunc("/api/session/details", api.HandleSessionDetails)
	mux.HandleFunc("/api/history", api.HandleHistory)
	mux.HandleFunc("/api/leaderboard", api.HandleLeaderboard)
	mux.HandleFunc("/api/leaderboard/stats", api.HandleLeaderboardStats)
	mux.HandleFunc("/ws/leaderboard", ws.ServeWS)

	return mux
}
