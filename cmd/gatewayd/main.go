package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/pennyfund/donate-gateway/internal/account"
	"github.com/pennyfund/donate-gateway/internal/chaincfg"
	"github.com/pennyfund/donate-gateway/internal/config"
	"github.com/pennyfund/donate-gateway/internal/donate"
	"github.com/pennyfund/donate-gateway/internal/gateway"
	"github.com/pennyfund/donate-gateway/internal/session"
)

func main() {
	_ = godotenv.Load()
	_ = godotenv.Overload(".env.local")

	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()

	net := chaincfg.Load()
	cfg := config.Load()

	ctx := context.Background()
	ec, err := ethclient.Dial(net.RPCURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("dial RPC failed")
	}
	chainID := net.ChainID()
	if chainID == nil {
		if chainID, err = ec.ChainID(ctx); err != nil {
			logger.Fatal().Err(err).Msg("chain id lookup failed")
		}
	}
	if !common.IsHexAddress(cfg.TokenAddress) {
		logger.Fatal().Str("addr", cfg.TokenAddress).Msg("USDC_CONTRACT is not a valid address")
	}
	if !common.IsHexAddress(cfg.FeeContract) {
		logger.Fatal().Msg("FEE_CONTRACT is empty or invalid")
	}

	provider := session.NewKeyedProvider(cfg.WalletKeyHex, chainID)
	manager := session.NewManager(provider)
	resolver := account.NewResolver(ec, common.HexToAddress(cfg.TokenAddress), cfg.TokenDecimals, cfg.CallRetries)
	engine := donate.NewEngine(ec, chainID, common.HexToAddress(cfg.FeeContract), cfg.TokenDecimals, cfg.GasBufferPct)
	tracker := donate.NewTracker(ec, cfg.ConfirmTimeout, cfg.ReceiptInterval)

	co := gateway.New(manager, resolver, engine, tracker, logger)
	if err := co.Initialize(ctx); err != nil {
		logger.Fatal().Err(err).Msg("session init failed")
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(logger))
	mountRoutes(r, co)

	server := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.ConfirmTimeout + 30*time.Second, // donations block on confirmation
	}

	go func() {
		logger.Info().Str("addr", cfg.ListenAddr).Str("network", net.DisplayName).Msg("gatewayd listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("shutdown failed")
	}
	logger.Info().Msg("server stopped")
}

func requestLogger(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Dur("dur", time.Since(start)).
				Msg("request")
		})
	}
}
