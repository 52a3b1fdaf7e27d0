package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"fanbase-quiz-service/internal/app"
	"fanbase-quiz-service/internal/domain"
	"fanbase-quiz-service/internal/identity"
	"fanbase-quiz-service/internal/infra/memory"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

const testSecret = "test-secret"

type testServer struct {
	server      *httptest.Server
	sessions    *memory.SessionStore
	entries     *memory.LeaderboardStore
	leaderboard *app.LeaderboardService
	feed        *app.LeaderboardFeed
}

// syncQueue applies completions inline so handler tests can assert
// leaderboard effects without waiting on the worker.
type syncQueue struct {
	leaderboard *app.LeaderboardService
}

func (q *syncQueue) Enqueue(userID string, score int) {
	_ = q.leaderboard.RecordCompletion(context.Background(), userID, score)
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	sessions := memory.NewSessionStore()
	entries := memory.NewLeaderboardStore()
	leaderboard := app.NewLeaderboardService(entries, sessions,
		identity.NewStaticResolver(map[string]string{"u1": "Alice", "u2": "Bob"}))
	feed := app.NewLeaderboardFeed()
	source := memory.NewQuestionSource(memory.NewStaticQuestionLoader(testPool()), time.Minute)
	quiz := app.NewQuizService(sessions, source, &syncQueue{leaderboard: leaderboard})

	handler := NewRouter(quiz, leaderboard, feed, NewTokenVerifier(testSecret), zap.NewNop())
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return &testServer{
		server:      server,
		sessions:    sessions,
		entries:     entries,
		leaderboard: leaderboard,
		feed:        feed,
	}
}

func testPool() []domain.Question {
	pool := make([]domain.Question, 3)
	for i := range pool {
		right := fmt.Sprintf("right-%d", i)
		wrong := fmt.Sprintf("wrong-%d", i)
		pool[i] = domain.Question{
			Question:         fmt.Sprintf("question %d", i),
			Options:          []string{right, wrong},
			CorrectAnswer:    right,
			IncorrectAnswers: []string{wrong},
		}
	}
	return pool
}

func signToken(t *testing.T, sub, username string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":      sub,
		"username": username,
	})
	signed, err := token.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func (ts *testServer) do(t *testing.T, method, path, token string, body any, out any) int {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, ts.server.URL+path, reader)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := ts.server.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	if out != nil && resp.StatusCode == http.StatusOK {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s %s: %v", method, path, err)
		}
	}
	return resp.StatusCode
}

func TestQuestionsEndpoint(t *testing.T) {
	ts := newTestServer(t)

	var body struct {
		Questions []domain.Question `json:"questions"`
	}
	if status := ts.do(t, http.MethodGet, "/api/questions", "", nil, &body); status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if len(body.Questions) != 3 {
		t.Fatalf("expected 3 questions, got %d", len(body.Questions))
	}
}

func TestGetOrCreateSessionIdempotent(t *testing.T) {
	ts := newTestServer(t)

	var first, second struct {
		Session domain.QuizSession `json:"session"`
	}
	if status := ts.do(t, http.MethodGet, "/api/session?id=s1", "", nil, &first); status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if status := ts.do(t, http.MethodGet, "/api/session?id=s1", "", nil, &second); status != http.StatusOK {
		t.Fatalf("expected 200 on repeat, got %d", status)
	}
	if len(first.Session.Questions) != len(second.Session.Questions) {
		t.Fatalf("question sets differ in length")
	}
	for i := range first.Session.Questions {
		if first.Session.Questions[i].Question != second.Session.Questions[i].Question {
			t.Fatalf("question order changed on repeated fetch")
		}
	}

	if status := ts.do(t, http.MethodGet, "/api/session", "", nil, nil); status != http.StatusBadRequest {
		t.Fatalf("expected 400 without id, got %d", status)
	}
}

func TestPlayThroughUpdatesLeaderboard(t *testing.T) {
	ts := newTestServer(t)
	token := signToken(t, "u1", "Alice")

	var created struct {
		Session domain.QuizSession `json:"session"`
	}
	ts.do(t, http.MethodGet, "/api/session?id=s1", token, nil, &created)

	var result domain.AnswerResult
	for i, q := range created.Session.Questions {
		status := ts.do(t, http.MethodPut, "/api/session", token, map[string]any{
			"sessionId":     "s1",
			"questionIndex": i,
			"answer":        q.CorrectAnswer,
		}, &result)
		if status != http.StatusOK {
			t.Fatalf("submit %d: expected 200, got %d", i, status)
		}
		if !result.Correct {
			t.Fatalf("submit %d: expected correct", i)
		}
	}
	if !result.Session.Completed || result.Session.Score != 3 {
		t.Fatalf("expected completed with score 3, got %+v", result.Session)
	}

	var board struct {
		Leaderboard []domain.RankedEntry `json:"leaderboard"`
	}
	if status := ts.do(t, http.MethodGet, "/api/leaderboard", "", nil, &board); status != http.StatusOK {
		t.Fatalf("leaderboard: expected 200, got %d", status)
	}
	if len(board.Leaderboard) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(board.Leaderboard))
	}
	top := board.Leaderboard[0]
	if top.UserID != "u1" || top.Username != "Alice" || top.TotalScore != 3 || top.Rank != 1 {
		t.Fatalf("unexpected top entry: %+v", top)
	}
}

func TestSubmitAnswerValidation(t *testing.T) {
	ts := newTestServer(t)

	var created struct {
		Session domain.QuizSession `json:"session"`
	}
	ts.do(t, http.MethodGet, "/api/session?id=s1", "", nil, &created)

	status := ts.do(t, http.MethodPut, "/api/session", "", map[string]any{
		"sessionId": "s1",
		"answer":    "whatever",
	}, nil)
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400 without questionIndex, got %d", status)
	}

	status = ts.do(t, http.MethodPut, "/api/session", "", map[string]any{
		"sessionId":     "s1",
		"questionIndex": 2,
		"answer":        "whatever",
	}, nil)
	if status != http.StatusConflict {
		t.Fatalf("expected 409 for out-of-turn index, got %d", status)
	}

	status = ts.do(t, http.MethodPut, "/api/session", "", map[string]any{
		"sessionId":     "missing",
		"questionIndex": 0,
		"answer":        "whatever",
	}, nil)
	if status != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown session, got %d", status)
	}
}

func TestRestartResetsProgress(t *testing.T) {
	ts := newTestServer(t)

	var created struct {
		Session domain.QuizSession `json:"session"`
	}
	ts.do(t, http.MethodGet, "/api/session?id=s1", "", nil, &created)
	ts.do(t, http.MethodPut, "/api/session", "", map[string]any{
		"sessionId":     "s1",
		"questionIndex": 0,
		"answer":        created.Session.Questions[0].CorrectAnswer,
	}, nil)

	var restarted struct {
		Session domain.QuizSession `json:"session"`
	}
	status := ts.do(t, http.MethodPost, "/api/session/restart", "",
		map[string]any{"sessionId": "s1"}, &restarted)
	if status != http.StatusOK {
		t.Fatalf("restart: expected 200, got %d", status)
	}
	if restarted.Session.Score != 0 || restarted.Session.CurrentQuestion != 0 || len(restarted.Session.AnswerHistory) != 0 {
		t.Fatalf("expected zeroed progress, got %+v", restarted.Session)
	}
	if restarted.Session.Questions[0].Question != created.Session.Questions[0].Question {
		t.Fatalf("restart changed the question order")
	}
}

func TestHistoryRequiresAuth(t *testing.T) {
	ts := newTestServer(t)
	token := signToken(t, "u1", "Alice")

	if status := ts.do(t, http.MethodGet, "/api/history", "", nil, nil); status != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", status)
	}

	var history struct {
		PastQuizzes []domain.QuizSession `json:"pastQuizzes"`
	}
	if status := ts.do(t, http.MethodGet, "/api/history", token, nil, &history); status != http.StatusOK {
		t.Fatalf("expected 200 with token, got %d", status)
	}
	if len(history.PastQuizzes) != 0 {
		t.Fatalf("expected empty history, got %d", len(history.PastQuizzes))
	}

	ts.do(t, http.MethodGet, "/api/session?id=s1", token, nil, nil)
	if status := ts.do(t, http.MethodGet, "/api/history", token, nil, &history); status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if len(history.PastQuizzes) != 1 || history.PastQuizzes[0].SessionID != "s1" {
		t.Fatalf("unexpected history: %+v", history.PastQuizzes)
	}
}

func TestSessionDetailsOwnerOnly(t *testing.T) {
	ts := newTestServer(t)
	owner := signToken(t, "u1", "Alice")
	other := signToken(t, "u2", "Bob")

	ts.do(t, http.MethodGet, "/api/session?id=s1", owner, nil, nil)

	if status := ts.do(t, http.MethodGet, "/api/session/details?id=s1", other, nil, nil); status != http.StatusForbidden {
		t.Fatalf("expected 403 for non-owner, got %d", status)
	}
	if status := ts.do(t, http.MethodGet, "/api/session/details?id=s1", "", nil, nil); status != http.StatusForbidden {
		t.Fatalf("expected 403 for anonymous caller, got %d", status)
	}

	var details struct {
		Session domain.QuizSession `json:"session"`
	}
	if status := ts.do(t, http.MethodGet, "/api/session/details?id=s1", owner, nil, &details); status != http.StatusOK {
		t.Fatalf("expected 200 for owner, got %d", status)
	}
	if details.Session.SessionID != "s1" || details.Session.UserID != "u1" {
		t.Fatalf("unexpected details: %+v", details.Session)
	}
}

func TestLeaderboardStatsEndpoint(t *testing.T) {
	ts := newTestServer(t)
	token := signToken(t, "u1", "Alice")

	var created struct {
		Session domain.QuizSession `json:"session"`
	}
	ts.do(t, http.MethodGet, "/api/session?id=s1", token, nil, &created)
	for i, q := range created.Session.Questions {
		ts.do(t, http.MethodPut, "/api/session", token, map[string]any{
			"sessionId":     "s1",
			"questionIndex": i,
			"answer":        q.CorrectAnswer,
		}, nil)
	}

	var body struct {
		Stats domain.LeaderboardStats `json:"stats"`
	}
	if status := ts.do(t, http.MethodGet, "/api/leaderboard/stats", token, nil, &body); status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if body.Stats.TotalUsers != 1 || body.Stats.TopScore != 3 {
		t.Fatalf("unexpected stats: %+v", body.Stats)
	}
	if body.Stats.UserStats == nil || body.Stats.UserStats.Rank != 1 {
		t.Fatalf("expected caller rank block, got %+v", body.Stats.UserStats)
	}
}

func TestInvalidTokenIsAnonymous(t *testing.T) {
	ts := newTestServer(t)

	req, _ := http.NewRequest(http.MethodGet, ts.server.URL+"/api/session?id=s1", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	resp, err := ts.server.Client().Do(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected anonymous fallback 200, got %d", resp.StatusCode)
	}

	session, err := ts.sessions.GetSession(context.Background(), "s1")
	if err != nil {
		t.Fatalf("session: %v", err)
	}
	if session.UserID != "" {
		t.Fatalf("expected anonymous session, got user %q", session.UserID)
	}
}
