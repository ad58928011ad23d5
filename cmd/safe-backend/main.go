// Command safe-backend serves the Safe wallet HTTP API.
//
// @title        Safe Backend API
// @version      1.0
// @description  Deterministic Safe wallet derivation, deployment and transaction relay.
// @BasePath     /
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/AlexZinkM/safe-backend/internal/api"
	"github.com/AlexZinkM/safe-backend/internal/client"
	"github.com/AlexZinkM/safe-backend/internal/common"
	"github.com/AlexZinkM/safe-backend/internal/config"
	"github.com/AlexZinkM/safe-backend/internal/handler"
	"github.com/AlexZinkM/safe-backend/internal/logging"
	"github.com/AlexZinkM/safe-backend/safe"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("safe-backend stopped")
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := logging.SetupGlobalLogger(cfg.LogLevel); err != nil {
		return err
	}
	logger := logging.NewLogger("safe-backend")

	key, err := cfg.SigningKey(config.PromptForPassword)
	if err != nil {
		return err
	}
	template, err := cfg.WalletTemplate()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ethClient, err := client.NewEthereumClient(ctx, cfg.RPCURL, key, cfg.ReceiptPollInterval, logging.NewLogger("rpc"))
	if err != nil {
		return err
	}
	defer ethClient.Close()

	checkSignerBalance(ctx, logger, cfg, ethClient)

	service := safe.NewService(ethClient, template, logging.NewLogger("safe"))
	router := api.SetupRouter(
		handler.NewSafeHandler(service, logging.NewLogger("http")),
		logging.NewLogger("http"),
	)

	server := &http.Server{
		Addr:    cfg.ListenAddr(),
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().
			Str("addr", server.Addr).
			Str("proxyFactory", template.ProxyFactory.Hex()).
			Str("masterCopy", template.MasterCopy.Hex()).
			Msg("server started")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// checkSignerBalance logs the backend signer balance and warns when it is
// below the configured minimum.
func checkSignerBalance(ctx context.Context, logger zerolog.Logger, cfg *config.Config, c *client.EthereumClient) {
	balance, err := c.Balance(ctx, c.Address())
	if err != nil {
		logger.Warn().Err(err).Msg("failed to read signer balance")
		return
	}
	logger.Info().
		Str("signer", c.Address().Hex()).
		Str("balance", common.FormatWei(balance)).
		Msg("signer balance")

	minBalance, err := cfg.MinBalance()
	if err != nil || minBalance == nil {
		return
	}
	if balance.Cmp(minBalance) < 0 {
		logger.Warn().
			Str("balance", common.FormatWei(balance)).
			Str("minimum", common.FormatWei(minBalance)).
			Msg("signer balance is below minimum, transactions may fail")
	}
}
