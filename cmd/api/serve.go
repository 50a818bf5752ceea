package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	httpadp "srp-backend/internal/adapter/http"
	"srp-backend/internal/adapter/middleware"
	"srp-backend/internal/adapter/repository/mysql"
	"srp-backend/internal/infrastructure/cache"
	"srp-backend/internal/infrastructure/metrics"
	"srp-backend/internal/usecase/browse"
	"srp-backend/internal/usecase/division"
	"srp-backend/internal/usecase/identity"
	"srp-backend/internal/usecase/ledger"
	"srp-backend/internal/usecase/request"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownGrace = 10 * time.Second

func serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serveRun(cmd.Context(), fromContext(cmd.Context()))
		},
	}
}

func serveRun(ctx context.Context, a *app) error {
	gdb, err := a.openDB()
	if err != nil {
		return err
	}
	rdb, err := cache.OpenRedis(a.cfg)
	if err != nil {
		return fmt.Errorf("open redis: %w", err)
	}
	defer rdb.Close()

	tx := mysql.NewGormUoW(gdb)
	authzRepo := mysql.NewAuthzRepository(gdb)
	names := cache.NewNameCache(rdb, mysql.NewNameRepository(gdb), a.cfg.NameCacheTTL(), a.log)

	ident := identity.NewUsecase(authzRepo, tx, a.log)
	h := httpadp.Handlers{
		Health: httpadp.NewHandler(),
		Requests: httpadp.NewRequestHandler(
			request.NewUsecase(tx, names, a.log),
			browse.NewUsecase(mysql.NewRequestRepository(gdb), a.log),
		),
		Ledger:    httpadp.NewLedgerHandler(ledger.NewUsecase(tx, a.log)),
		Divisions: httpadp.NewDivisionHandler(division.NewUsecase(authzRepo, tx, a.log)),
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = httpadp.NewValidator()
	e.Use(echomw.Logger(), echomw.Recover(), metrics.Middleware())
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))
	e.Use(middleware.ActorMiddleware(ident, a.log))
	h.Register(e, middleware.IdempotencyMiddleware(rdb, a.cfg.IdempotencyTTL(), a.log))

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	addr := ":" + a.cfg.AppPort
	errCh := make(chan error, 1)
	go func() {
		a.log.Info("listening", zap.String("addr", addr))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	a.log.Info("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	return e.Shutdown(sctx)
}
