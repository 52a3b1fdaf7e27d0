package app

import (
	"context"
	"time"

	"go.uber.org/zap"
)

type completion struct {
	userID string
	score  int
}

// CompletionWorker applies leaderboard updates off the request path. Quiz
// completion stays user-visible even when the ranking write fails: failures
// are logged for operators and the update is dropped, never retried or
// duplicated.
type CompletionWorker struct {
	leaderboard *LeaderboardService
	feed        *LeaderboardFeed
	log         *zap.Logger
	timeout     time.Duration

	queue chan completion
	done  chan struct{}
}

// NewCompletionWorker starts the worker goroutine. feed may be nil when no
// live subscribers exist (e.g. unit tests).
func NewCompletionWorker(leaderboard *LeaderboardService, feed *LeaderboardFeed, log *zap.Logger) *CompletionWorker {
	w := &CompletionWorker{
		leaderboard: leaderboard,
		feed:        feed,
		log:         log,
		timeout:     10 * time.Second,
		queue:       make(chan completion, 64),
		done:        make(chan struct{}),
	}
	go w.run()
	return w
}

// Enqueue hands one completed session to the worker. The queue is bounded;
// when it is full the update is dropped and logged, keeping submits
// non-blocking.
func (w *CompletionWorker) Enqueue(userID string, score int) {
	select {
	case w.queue <- completion{userID: userID, score: score}:
	default:
		w.log.Warn("completion queue full, dropping leaderboard update",
			zap.String("userId", userID), zap.Int("score", score))
	}
}

// Close drains pending updates and stops the worker.
func (w *CompletionWorker) Close() {
	close(w.queue)
	<-w.done
}

func (w *CompletionWorker) run() {
	defer close(w.done)
	for c := range w.queue {
		ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
		if err := w.leaderboard.RecordCompletion(ctx, c.userID, c.score); err != nil {
			w.log.Warn("leaderboard update failed",
				zap.String("userId", c.userID), zap.Int("score", c.score), zap.Error(err))
			cancel()
			continue
		}
		w.log.Info("recorded quiz completion",
			zap.String("userId", c.userID), zap.Int("score", c.score))

		if w.feed != nil {
			lb, err := w.leaderboard.Compute(ctx)
			if err != nil {
				w.log.Warn("leaderboard snapshot failed", zap.Error(err))
			} else {
				w.feed.Publish(lb)
			}
		}
		cancel()
	}
}
