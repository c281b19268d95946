package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"storefront/auth"
	"storefront/db"
	"storefront/events"
	"storefront/media"
	"storefront/repository"
	"storefront/routes"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Migrate the schema and start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return serve(ctx)
	},
}

func serve(ctx context.Context) error {
	cfg, log, gdb, err := bootstrap()
	if err != nil {
		return err
	}
	defer func() {
		_ = db.Close(gdb)
		_ = log.Sync()
	}()

	if err := db.Migrate(gdb); err != nil {
		return err
	}

	tokens, err := auth.NewTokenService(cfg.JWT.Secret, cfg.JWT.Expiry)
	if err != nil {
		return err
	}

	store, err := media.NewStore(cfg.Upload.Dir, log)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	hub := events.NewHub(log)
	go hub.Run(hubCtx)

	app := routes.New(routes.Deps{
		Config:     cfg,
		DB:         gdb,
		Log:        log,
		Users:      repository.NewUserRepository(gdb),
		Categories: repository.NewCategoryRepository(gdb),
		Products:   repository.NewProductRepository(gdb),
		Tokens:     tokens,
		Hasher:     auth.NewBcryptHasher(cfg.BcryptCost),
		Media:      store,
		Hub:        hub,
		Registry:   reg,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening", zap.String("addr", cfg.HTTP.Addr))
		errCh <- app.Listen(cfg.HTTP.Addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down gracefully...")
	stopHub()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error("Error shutting down HTTP app", zap.Error(err))
		return err
	}
	log.Info("HTTP app stopped gracefully")
	return nil
}
