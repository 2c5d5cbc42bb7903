package main

import (
	"context"
	"os/signal"
	"syscall"

	"kharcha/internal/cli"
	"kharcha/internal/services"
)

func main() {
	logger := cli.SetupLogger()
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig(logger)

	store := cli.InitStore(logger, cfg.DBPath)
	cipher := cli.InitCipher(logger, cfg)
	alerts := cli.InitAlerts(logger, cfg)

	svc := services.NewExpenseService(store, cipher, alerts, cfg.DefaultCurrency)
	defer func() {
		if err := svc.Close(); err != nil {
			logger.Error("Shutdown error", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cli.NewMenu(svc, cfg, logger).Run(ctx)
	logger.Info("Goodbye")
}
