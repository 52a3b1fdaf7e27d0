package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"fanbase-quiz-service/internal/app"
	"fanbase-quiz-service/internal/domain"
	"go.uber.org/zap"
)

// API exposes the quiz and leaderboard use cases over JSON.
type API struct {
	quiz        *app.QuizService
	leaderboard *app.LeaderboardService
	auth        *TokenVerifier
	log         *zap.Logger
}

func NewAPI(quiz *app.QuizService, leaderboard *app.LeaderboardService, auth *TokenVerifier, log *zap.Logger) *API {
	return &API{
		quiz:        quiz,
		leaderboard: leaderboard,
		auth:        auth,
		log:         log,
	}
}

type submitRequest struct {
	SessionID     string `json:"sessionId"`
	QuestionIndex *int   `json:"questionIndex"`
	Answer        string `json:"answer"`
}

type restartRequest struct {
	SessionID string `json:"sessionId"`
}

// HandleQuestions returns a freshly shuffled question set.
func (a *API) HandleQuestions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w, http.MethodGet)
		return
	}
	questions, err := a.quiz.Questions(r.Context())
	if err != nil {
		a.log.Warn("questions request failed", zap.Error(err))
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"questions": questions})
}

// HandleSession serves get-or-create (GET) and answer submission (PUT) for a
// session.
func (a *API) HandleSession(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		a.getOrCreateSession(w, r)
	case http.MethodPut:
		a.submitAnswer(w, r)
	default:
		writeMethodNotAllowed(w, "GET, PUT")
	}
}

func (a *API) getOrCreateSession(w http.ResponseWriter, r *http.Request) {
	sessionID := strings.TrimSpace(r.URL.Query().Get("id"))
	if sessionID == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "session id is required"})
		return
	}
	user, _ := a.auth.UserFromRequest(r)

	session, err := a.quiz.GetOrCreateSession(r.Context(), sessionID, user.ID)
	if err != nil {
		a.log.Warn("get-or-create session failed",
			zap.String("sessionId", sessionID), zap.Error(err))
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"session": session})
}

func (a *API) submitAnswer(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}
	if req.SessionID == "" || req.QuestionIndex == nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "sessionId and questionIndex are required"})
		return
	}
	user, _ := a.auth.UserFromRequest(r)

	result, err := a.quiz.SubmitAnswer(r.Context(), req.SessionID, user.ID, *req.QuestionIndex, req.Answer)
	if err != nil {
		a.log.Warn("submit answer failed",
			zap.String("sessionId", req.SessionID), zap.Error(err))
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// HandleRestart zeroes a session's progress, replaying the same questions.
func (a *API) HandleRestart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w, http.MethodPost)
		return
	}
	defer r.Body.Close()

	var req restartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.SessionID == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "sessionId is required"})
		return
	}
	user, _ := a.auth.UserFromRequest(r)

	session, err := a.quiz.RestartSession(r.Context(), req.SessionID, user.ID)
	if err != nil {
		a.log.Warn("restart session failed",
			zap.String("sessionId", req.SessionID), zap.Error(err))
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"session": session})
}

// HandleSessionDetails returns the full session for the post-game summary;
// only the owner may read it.
func (a *API) HandleSessionDetails(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w, http.MethodGet)
		return
	}
	sessionID := strings.TrimSpace(r.URL.Query().Get("id"))
	if sessionID == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "session id is required"})
		return
	}
	user, _ := a.auth.UserFromRequest(r)

	session, err := a.quiz.SessionDetails(r.Context(), sessionID, user.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"session": session})
}

// HandleHistory lists the authenticated user's past sessions, newest first.
func (a *API) HandleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w, http.MethodGet)
		return
	}
	user, ok := a.auth.UserFromRequest(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "authentication required"})
		return
	}

	sessions, err := a.quiz.History(r.Context(), user.ID)
	if err != nil {
		a.log.Warn("history request failed", zap.String("userId", user.ID), zap.Error(err))
		writeServiceError(w, err)
		return
	}
	if sessions == nil {
		sessions = []domain.QuizSession{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"pastQuizzes": sessions})
}

// HandleLeaderboard returns the ranked scoreboard.
func (a *API) HandleLeaderboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w, http.MethodGet)
		return
	}
	lb, err := a.leaderboard.Compute(r.Context())
	if err != nil {
		a.log.Warn("leaderboard request failed", zap.Error(err))
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"leaderboard": lb.Entries, "updatedAt": lb.UpdatedAt})
}

// HandleLeaderboardStats returns scoreboard totals plus the caller's own
// rank block when authenticated.
func (a *API) HandleLeaderboardStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w, http.MethodGet)
		return
	}
	user, _ := a.auth.UserFromRequest(r)

	stats, err := a.leaderboard.Stats(r.Context(), user.ID)
	if err != nil {
		a.log.Warn("leaderboard stats failed", zap.Error(err))
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"stats": stats})
}
