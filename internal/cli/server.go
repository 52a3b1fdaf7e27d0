package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fanbase-quiz-service/internal/app"
	"fanbase-quiz-service/internal/config"
	"fanbase-quiz-service/internal/domain"
	"fanbase-quiz-service/internal/identity"
	"fanbase-quiz-service/internal/infra/memory"
	pginfra "fanbase-quiz-service/internal/infra/postgres"
	redisinfra "fanbase-quiz-service/internal/infra/redis"
	"fanbase-quiz-service/internal/logging"
	transport "fanbase-quiz-service/internal/transport/http"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const defaultQuestionCount = 10

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	log := logging.New(cfg.Log.Level, cfg.Log.File)
	defer log.Sync()

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
	}

	questionCount := cfg.Questions.Count
	if questionCount <= 0 {
		questionCount = defaultQuestionCount
	}
	questionTTL := config.TTLDuration(cfg.Questions.TTL, 10*time.Minute)

	var loader interface {
		LoadQuestions(ctx context.Context) ([]domain.Question, error)
	} = memory.NewStaticQuestionLoader(sampleQuestions())
	if pool != nil {
		loader = pginfra.NewQuestionSource(pool, questionCount)
	}

	var questions app.QuestionSource
	if redisClient != nil {
		questions = redisinfra.NewQuestionSource(redisClient, loader, questionTTL)
	} else {
		questions = memory.NewQuestionSource(loader, questionTTL)
	}

	var sessions app.SessionRepository = memory.NewSessionStore()
	var entries app.LeaderboardRepository = memory.NewLeaderboardStore()
	if pool != nil {
		sessions = pginfra.NewSessionStore(pool)
		entries = pginfra.NewLeaderboardStore(pool)
	}

	var resolver app.IdentityResolver
	if cfg.Identity.BaseURL != "" {
		resolver = identity.NewHTTPResolver(cfg.Identity.BaseURL, nil)
	} else {
		resolver = identity.NewStaticResolver(nil)
	}

	leaderboard := app.NewLeaderboardService(entries, sessions, resolver)
	feed := app.NewLeaderboardFeed()
	worker := app.NewCompletionWorker(leaderboard, feed, log)
	quiz := app.NewQuizService(sessions, questions, worker)

	auth := transport.NewTokenVerifier(cfg.Auth.JWTSecret)
	router := transport.NewRouter(quiz, leaderboard, feed, auth, log)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info("starting fanbase quiz service", zap.String("port", finalPort))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("failed to start server", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Info("shutting down server")
	case <-ctx.Done():
		log.Info("context canceled, shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err = server.Shutdown(shutdownCtx)
	worker.Close()
	return err
}

// sampleQuestions seeds DB-less dev runs; production pulls the pool from
// Postgres.
func sampleQuestions() []domain.Question {
	return []domain.Question{
		{
			Question:         "In which year did the group debut?",
			Options:          []string{"2014", "2015", "2016", "2017"},
			CorrectAnswer:    "2016",
			IncorrectAnswers: []string{"2014", "2015", "2017"},
		},
		{
			Question:         "How many members are in the group?",
			Options:          []string{"4", "5", "6", "7"},
			CorrectAnswer:    "5",
			IncorrectAnswers: []string{"4", "6", "7"},
		},
		{
			Question:         "What was the title track of the first full album?",
			Options:          []string{"Shine", "Starlight", "Bloom", "Heartbeat"},
			CorrectAnswer:    "Starlight",
			IncorrectAnswers: []string{"Shine", "Bloom", "Heartbeat"},
		},
		{
			Question:         "Which city hosted the first world tour stop?",
			Options:          []string{"Seoul", "Tokyo", "Bangkok", "Manila"},
			CorrectAnswer:    "Seoul",
			IncorrectAnswers: []string{"Tokyo", "Bangkok", "Manila"},
		},
	}
}
