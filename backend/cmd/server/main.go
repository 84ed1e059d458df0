/*
 * @Author: NEFU AB-IN
 * @Date: 2025-10-08 19:55:11
 * @FilePath: \isizulu-corpus\backend\cmd\server\main.go
 * @LastEditTime: 2025-10-14 17:40:26
 */
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"isizulu-corpus/backend/internal/app"
	"isizulu-corpus/backend/internal/bootstrap"
	"isizulu-corpus/backend/internal/config"
	"isizulu-corpus/backend/internal/infra/logger"
	"isizulu-corpus/backend/internal/infra/metrics"
)

func main() {
	zapLogger, err := logger.Init()
	if err != nil {
		panic(fmt.Sprintf("init logger failed: %v", err))
	}
	defer logger.Sync()
	sugar := zapLogger.Sugar()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	app.WithShutdown(ctx, stop, func(ctx context.Context) error {
		flags := config.LoadRuntimeFlags()
		if err := config.EnvFileError(); err != nil {
			return err
		}
		sugar.Infow("environment files loaded", "files", config.LoadEnvFiles())

		serverCfg, err := config.LoadServerConfig(flags.Mode)
		if err != nil {
			return err
		}

		resources, err := app.InitResources(ctx)
		if err != nil {
			return fmt.Errorf("initialise resources: %w", err)
		}
		defer func() {
			if closeErr := resources.Close(); closeErr != nil {
				sugar.Warnw("close resources failed", "error", closeErr)
			}
		}()

		metrics.MustRegister()

		application, err := bootstrap.BuildApplication(ctx, sugar, resources, serverCfg)
		if err != nil {
			return fmt.Errorf("build application: %w", err)
		}

		srv := &http.Server{
			Addr:              serverCfg.Addr(),
			Handler:           application.Router,
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			sugar.Infow("http server listening", "addr", srv.Addr, "mode", resources.Config.Mode)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		select {
		case err := <-errCh:
			if err != nil {
				return fmt.Errorf("http server: %w", err)
			}
			return nil
		case <-ctx.Done():
		}

		sugar.Infow("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), serverCfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	})
}
