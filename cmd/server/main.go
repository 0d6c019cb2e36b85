// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fantasma/fantasma

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fantasma/fantasma/internal/api"
	"github.com/fantasma/fantasma/internal/audit"
	"github.com/fantasma/fantasma/internal/config"
	"github.com/fantasma/fantasma/internal/crypto"
	"github.com/fantasma/fantasma/internal/logging"
	"github.com/fantasma/fantasma/internal/middleware"
	"github.com/fantasma/fantasma/internal/oidc"
	"github.com/fantasma/fantasma/internal/proof"
	"github.com/fantasma/fantasma/internal/repository"
	"github.com/fantasma/fantasma/internal/supervisor"
	"github.com/fantasma/fantasma/internal/supervisor/services"
)

func main() {
	cfg, err := config.LoadWithKoanf()
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})

	logging.Info().Str("issuer", cfg.Issuer.URL).Str("bind_addr", cfg.Server.BindAddr).Msg("starting fantasma")

	store, err := repository.Open(cfg.Repository.Path)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to open repository")
	}
	defer func() {
		if err := store.Close(); err != nil {
			logging.Error().Err(err).Msg("error closing repository")
		}
	}()

	signer, err := crypto.LoadOrGenerateSigner(cfg.Signer.KeyID, cfg.Signer.KeyPath, cfg.Signer.EncryptionSecret)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load or generate signing key")
	}
	logging.Info().Str("key_id", signer.KeyID).Msg("signing key ready")

	auditStore := repository.NewAuditStore(store)
	auditCfg := audit.DefaultConfig()
	auditLogger := audit.NewLogger(auditStore, auditCfg)
	defer func() {
		if err := auditLogger.Close(); err != nil {
			logging.Error().Err(err).Msg("error closing audit logger")
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	auditLogger.StartCleanupRoutine(ctx)

	backend := proof.NewBreakerBackend(proof.NewLocalProver(), proof.DefaultBreakerConfig())
	verifier := proof.NewSTARKVerifier()
	orchCfg := proof.DefaultConfig()
	if cfg.Proof.Workers > 0 {
		orchCfg.Workers = cfg.Proof.Workers
	}
	if cfg.Proof.ReclaimInterval > 0 {
		orchCfg.ReclaimInterval = cfg.Proof.ReclaimInterval
	}
	if cfg.Proof.StaleAfter > 0 {
		orchCfg.ReclaimAfter = cfg.Proof.StaleAfter
	}
	orch := proof.NewOrchestrator(store, backend, verifier, orchCfg)

	oidcHandler := oidc.New(oidc.Config{
		IssuerURL:        cfg.Issuer.URL,
		PseudonymLength:  cfg.Issuer.PseudonymLength,
		ConsentTimeout:   cfg.Server.ConsentTimeout,
		AuthCodeTTL:      cfg.Server.AuthCodeTTL,
		AccessTokenTTL:   cfg.Server.AccessTokenTTL,
		RefreshTokenTTL:  cfg.Server.RefreshTokenTTL,
		ProofWaitTimeout: cfg.Proof.WaitTimeout,
	}, store, orch, signer, auditLogger)

	perf := middleware.NewPerformanceMonitor(1000)

	adminHandler := api.NewAdminHandler(api.AdminConfig{
		DefaultPageLimit: cfg.Admin.DefaultPageLimit,
		MaxPageLimit:     cfg.Admin.MaxPageLimit,
	}, store, auditLogger, perf)

	if cfg.Admin.Key == "" {
		logging.Warn().Msg("FANTASMA_ADMIN_KEY is not set; the admin surface will reject every request")
	}

	chiMW := api.NewChiMiddleware(&api.ChiMiddlewareConfig{
		CORSAllowedOrigins:   cfg.Security.CORSOrigins,
		CORSAllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		CORSAllowedHeaders:   []string{"Content-Type", "Authorization", "X-Admin-Key"},
		CORSAllowCredentials: false,
		CORSMaxAge:           86400,
		RateLimitRequests:    cfg.Security.RateLimitReqs,
		RateLimitWindow:      cfg.Security.RateLimitWindow,
		RateLimitDisabled:    cfg.Security.RateLimitDisabled,
	})

	router := api.NewRouter(oidcHandler, adminHandler, chiMW, cfg.Admin.Key, perf)

	server := &http.Server{
		Addr:              cfg.Server.BindAddr,
		Handler:           router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	slogLogger := logging.NewSlogLogger()
	tree, err := supervisor.NewSupervisorTree(slogLogger, supervisor.TreeConfig{
		FailureThreshold: 5,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to create supervisor tree")
	}

	for i := 0; i < orchCfg.Workers; i++ {
		tree.AddProvingService(orch.WorkerService())
	}
	tree.AddProvingService(orch.ReclaimerService())
	tree.AddProvingService(newGCService(store, cfg.Repository.GCInterval, cfg.Repository.GCDiscardRatio))

	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	logging.Info().Str("addr", server.Addr).Msg("http server service added")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("context canceled, waiting for supervisor to finish")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("supervisor tree error")
		}
	}

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("supervisor shutdown error")
		}
	}

	if unstopped, _ := tree.UnstoppedServiceReport(); len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("service failed to stop")
		}
	}

	logging.Info().Msg("fantasma stopped gracefully")
}
