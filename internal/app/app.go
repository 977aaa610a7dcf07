package app

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"biodash/internal/charts"
	"biodash/internal/config"
	"biodash/internal/db"
	"biodash/internal/ingest"
	"biodash/internal/live"
	"biodash/internal/push"
	"biodash/internal/retention"
	"biodash/internal/web"
	"biodash/internal/zones"
)

type App struct {
	cfg config.Config
	log *slog.Logger

	db     *db.Repository
	broker *push.Broker

	live      *live.Controller
	retention *retention.Service
	web       *web.Server

	httpSrv *http.Server
}

func New(cfg config.Config, logger *slog.Logger) (*App, error) {
	if err := zones.Validate(); err != nil {
		return nil, err
	}

	sqldb, err := db.Open(cfg.DBPath)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(sqldb); err != nil {
		return nil, err
	}
	repo := db.NewRepository(sqldb)

	// Broker failures are not fatal: the push channel stays down and the
	// poll fallback carries the live view alone.
	broker, err := push.Connect(cfg.MQTTBroker, cfg.MQTTClientID, cfg.MQTTTopic, logger.With("module", "push"))
	if err != nil {
		logger.Warn("mqtt connect failed, running poll-only", "broker", cfg.MQTTBroker, "err", err)
		broker = nil
	}

	var pushSource live.PushSource
	var publisher ingest.Publisher
	if broker != nil {
		pushSource = broker
		publisher = broker
	}

	ctrl := live.New(repo, pushSource, cfg.PollInterval, logger.With("module", "live"))
	ing := ingest.NewHandler(repo, publisher, logger.With("module", "ingest"))
	w := web.NewServer(repo, ctrl, ing, charts.Defaults, cfg.HistoryLimit, logger.With("module", "web"))

	app := &App{
		cfg:       cfg,
		log:       logger,
		db:        repo,
		broker:    broker,
		live:      ctrl,
		retention: retention.NewService(repo, cfg.RetentionDays, logger.With("module", "retention")),
		web:       w,
	}
	app.httpSrv = &http.Server{Addr: cfg.Addr, Handler: w.Routes()}
	return app, nil
}

func (a *App) Run(ctx context.Context) error {
	go func() {
		a.log.Info("http server listening", "addr", a.cfg.Addr)
		if err := a.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.log.Error("http server failed", "err", err)
		}
	}()

	a.live.Start(ctx)

	retentionTicker := time.NewTicker(6 * time.Hour)
	defer retentionTicker.Stop()

	// Immediate first run
	a.retention.Run(ctx)

	for {
		select {
		case <-ctx.Done():
			_ = a.httpSrv.Shutdown(context.Background())
			a.live.Stop()
			if a.broker != nil {
				a.broker.Close()
			}
			return a.db.DB().Close()
		case <-retentionTicker.C:
			a.retention.Run(ctx)
		}
	}
}
