package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/openclaw/clawshield/internal/clawshield/executor"
	"github.com/openclaw/clawshield/internal/clawshield/pipeline"
	"github.com/openclaw/clawshield/internal/clawshield/policy"
	"github.com/openclaw/clawshield/internal/clawshield/resolver"
	"github.com/openclaw/clawshield/internal/clawshield/stats"
	"github.com/openclaw/clawshield/internal/clawshield/store/sqlite"
	"github.com/openclaw/clawshield/internal/config"
	"github.com/openclaw/clawshield/internal/db"
	"github.com/openclaw/clawshield/internal/httpapi"
)

func main() {
	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "clawshield-server ", log.LstdFlags|log.LUTC)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Storage
	conn, err := db.Open(ctx, db.Config{Path: cfg.DBPath, Env: cfg.Env})
	if err != nil {
		logger.Fatalf("open db: %v", err)
	}
	defer conn.Close()

	if cfg.Env == "dev" {
		if err := db.SeedDev(ctx, conn); err != nil {
			logger.Fatalf("seed dev db: %v", err)
		}
	}

	writer := db.NewWorker(conn)
	defer writer.Close()

	auditStore := sqlite.NewAuditStore(conn, writer)

	// Policy
	ruleSet := policy.DefaultRuleSet()
	if cfg.PolicyPath != "" {
		ruleSet, err = policy.LoadFile(cfg.PolicyPath)
		if err != nil {
			logger.Fatalf("load policy: %v", err)
		}
	}
	validator := policy.NewValidator(ruleSet)
	logger.Printf("policy loaded (version=%s, rules=%d)", ruleSet.Version, len(ruleSet.Rules))

	if cfg.PolicyWatch && cfg.PolicyPath != "" {
		watcher := policy.NewWatcher(cfg.PolicyPath, validator, logger)
		if err := watcher.Start(ctx); err != nil {
			logger.Fatalf("start policy watcher: %v", err)
		}
		defer watcher.Stop()
	}

	// Pipeline
	orchestrator := pipeline.NewOrchestrator(pipeline.Dependencies{
		Resolver:  resolver.NewKeywordResolver(),
		Validator: validator,
		Executor:  executor.NewSimulated(),
		Audit:     auditStore,
		Logger:    logger,
	}, pipeline.Config{
		ResolveTimeout: cfg.ResolveTimeout,
		ExecuteTimeout: cfg.ExecuteTimeout,
	})

	aggregator := stats.NewAggregator(
		auditStore,
		stats.Baseline{Total: int64(cfg.BaselineTotal), Blocks: int64(cfg.BaselineBlocks)},
		stats.Static{Health: cfg.SystemHealth, Agents: cfg.ActiveAgents},
	)

	// HTTP
	srv := httpapi.NewServer(httpapi.Dependencies{
		Logger:       logger,
		Addr:         cfg.HTTPAddr,
		Orchestrator: orchestrator,
		Validator:    validator,
		Audit:        auditStore,
		Stats:        aggregator,
	})

	go func() {
		logger.Printf("listening on %s", cfg.HTTPAddr)
		if err := srv.Start(); err != nil {
			logger.Printf("server error: %v", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}
