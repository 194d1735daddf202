package main

import (
	"context"
	"database/sql"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"therapy-ai-agent/internal/agent"
	"therapy-ai-agent/internal/assessment"
	"therapy-ai-agent/internal/config"
	"therapy-ai-agent/internal/crisis"
	"therapy-ai-agent/internal/docs"
	"therapy-ai-agent/internal/goal"
	"therapy-ai-agent/internal/homework"
	"therapy-ai-agent/internal/patient"
	"therapy-ai-agent/internal/platform/db"
	"therapy-ai-agent/internal/session"
)

type app struct {
	cfg    *config.Config
	logger zerolog.Logger
	conn   *sql.DB

	patients    patient.Service
	crises      crisis.Service
	assessments assessment.Service
	goals       goal.Service
	homework    homework.Service
	notes       docs.Service
	sessions    session.Repository
	manager     *session.Manager
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()
	if cfg.IsDev() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	}
	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		logger = logger.Level(level)
	}

	conn, err := db.Open(cfg.DBPath)
	if err != nil {
		return nil, err
	}

	responder, err := buildResponder(ctx, cfg, logger)
	if err != nil {
		conn.Close()
		return nil, err
	}

	a := &app{
		cfg:         cfg,
		logger:      logger,
		conn:        conn,
		patients:    patient.NewService(patient.NewRepository(conn), logger),
		crises:      crisis.NewService(crisis.NewRepository(conn), logger),
		assessments: assessment.NewService(assessment.NewRepository(conn), logger),
		goals:       goal.NewService(goal.NewRepository(conn), logger),
		homework:    homework.NewService(homework.NewRepository(conn), logger),
		notes:       docs.NewService(docs.NewRepository(conn), logger),
		sessions:    session.NewRepository(conn),
	}
	a.manager = session.NewManager(
		a.sessions,
		a.patients, a.crises, a.goals, a.homework, a.notes,
		responder, cfg.SessionDuration(), logger)
	return a, nil
}

func (a *app) close() {
	a.conn.Close()
}

// offlineResponder always errors so SafeGenerate serves its fallbacks.
// Used when no API key is configured, which keeps the CLI usable for
// record keeping.
type offlineResponder struct{}

func (offlineResponder) Generate(ctx context.Context, req agent.Request) (string, error) {
	return "", &agent.GenerationError{Reason: "no API key configured"}
}

func buildResponder(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (agent.Responder, error) {
	if cfg.GeminiAPIKey == "" {
		logger.Warn().Msg("GEMINI_API_KEY not set; conversational replies will use fallbacks")
		return offlineResponder{}, nil
	}
	return agent.NewGeminiResponder(ctx, cfg.GeminiAPIKey, agent.Options{
		Model:           cfg.GeminiModel,
		Temperature:     cfg.GeminiTemperature,
		MaxOutputTokens: cfg.GeminiMaxTokens,
		RequestInterval: cfg.RequestInterval(),
		MaxRetries:      cfg.MaxRetries,
	}, logger)
}

func main() {
	rootCmd := &cobra.Command{
		Use:          "therapy",
		Short:        "AI-assisted therapy session manager",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(chatCmd())
	rootCmd.AddCommand(patientCmd())
	rootCmd.AddCommand(assessCmd())
	rootCmd.AddCommand(goalsCmd())
	rootCmd.AddCommand(homeworkCmd())
	rootCmd.AddCommand(alertsCmd())
	rootCmd.AddCommand(interviewCmd())
	rootCmd.AddCommand(sessionsCmd())
	rootCmd.AddCommand(noteCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
