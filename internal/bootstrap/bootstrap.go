package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"

	conflictinadapter "babylog/internal/modules/conflict/adapter/in"
	conflictoutadapter "babylog/internal/modules/conflict/adapter/out"
	conflictservice "babylog/internal/modules/conflict/service"
	conflictusecase "babylog/internal/modules/conflict/usecase"
	trackinginadapter "babylog/internal/modules/tracking/adapter/in"
	trackingoutadapter "babylog/internal/modules/tracking/adapter/out"
	trackingservice "babylog/internal/modules/tracking/service"
	trackingusecase "babylog/internal/modules/tracking/usecase"
	"babylog/internal/platform/clock"
	"babylog/internal/platform/config"
	"babylog/internal/platform/id"
	"babylog/internal/platform/logging"
	"babylog/internal/platform/sqlite"
	"babylog/internal/platform/telemetry"
	uiapp "babylog/internal/ui/app"
)

type App struct {
	Config      config.Config
	TrackingCLI trackinginadapter.CLIHandler
	ConflictCLI conflictinadapter.CLIHandler
	Log         *slog.Logger

	db      *sql.DB
	logSink io.Closer
	metrics telemetry.Recorder
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	log, sink, err := logging.New(cfg.DataDir, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, fmt.Errorf("init logging: %w", err)
	}

	var metrics telemetry.Recorder = telemetry.Noop{}
	if cfg.Telemetry.Enabled {
		otel, err := telemetry.NewOTel(ctx, cfg.Telemetry)
		if err != nil {
			log.WarnContext(ctx, "telemetry disabled", "error", err)
		} else {
			metrics = otel
		}
	}

	db, err := sqlite.Open(ctx, cfg.Storage)
	if err != nil {
		_ = sink.Close()
		return nil, fmt.Errorf("open store: %w", err)
	}

	clk := clock.SystemClock{}
	ids := id.UUID{}

	timers := trackingservice.NewTimerService(
		clk,
		ids,
		trackingoutadapter.NewSQLiteSessionStore(db),
		trackingoutadapter.NewSQLiteRecordStore(db),
		sqlite.NewTxManager(db),
		log.With("module", "tracking"),
		metrics,
	)
	entries := trackingservice.NewEntryService(
		clk,
		ids,
		trackingoutadapter.NewSQLiteRecordStore(db),
		trackingoutadapter.NewMarkdownJournalWriter(cfg.DataDir),
		log.With("module", "tracking"),
	)
	query := trackingusecase.NewQuery(timers, entries)

	conflictUC := conflictusecase.NewInteractor(conflictservice.NewEvaluator(
		clk,
		conflictoutadapter.NewTrackingSessionSource(query),
		log.With("module", "conflict"),
		metrics,
	))
	trackingUC := trackingusecase.NewInteractor(query, timers, entries, conflictUC)

	return &App{
		Config:      cfg,
		TrackingCLI: trackinginadapter.NewCLIHandler(trackingUC),
		ConflictCLI: conflictinadapter.NewCLIHandler(conflictUC),
		Log:         log,
		db:          db,
		logSink:     sink,
		metrics:     metrics,
	}, nil
}

// Close flushes metrics and releases the store and log file.
func (a *App) Close(ctx context.Context) error {
	return errors.Join(a.metrics.Close(ctx), a.db.Close(), a.logSink.Close())
}

func RunTUI(app *App) error {
	model := uiapp.NewModel(app.Config.BabyID, app.Config.TickInterval, app.TrackingCLI)
	program := tea.NewProgram(model, tea.WithAltScreen())
	_, err := program.Run()
	return err
}
