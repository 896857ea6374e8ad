package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hupe1980/kustopilot"
	"github.com/hupe1980/kustopilot/answer"
	"github.com/hupe1980/kustopilot/config"
	"github.com/hupe1980/kustopilot/executor/kusto"
	"github.com/hupe1980/kustopilot/generator"
	"github.com/hupe1980/kustopilot/guard"
	"github.com/hupe1980/kustopilot/llm"
	"github.com/hupe1980/kustopilot/llm/anthropic"
	"github.com/hupe1980/kustopilot/llm/openai"
	"github.com/hupe1980/kustopilot/logging"
	"github.com/hupe1980/kustopilot/pipeline"
)

const requestTimeout = 2 * time.Minute

func main() {
	addr := flag.String("addr", "", "HTTP listen address (overrides LISTEN_ADDR)")
	policyPath := flag.String("policy", "", "Path to a YAML guardrail policy (overrides GUARDRAIL_POLICY_FILE)")
	isDebug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	slogLevel := slog.LevelInfo
	if *isDebug {
		slogLevel = slog.LevelDebug
	}
	slogger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      slogLevel,
		TimeFormat: time.RFC3339,
	}))
	logger := logging.NewSlogAdapter(slogger)

	cfg, err := config.Load()
	if err != nil {
		slogger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if *addr != "" {
		cfg.ListenAddr = *addr
	}
	if *policyPath != "" {
		cfg.PolicyFile = *policyPath
	}

	completer, err := newCompleter(cfg.Provider)
	if err != nil {
		slogger.Error("failed to create completer", "error", err)
		os.Exit(1)
	}

	validator, err := newValidator(cfg, logger)
	if err != nil {
		slogger.Error("failed to create validator", "error", err)
		os.Exit(1)
	}

	gen := generator.New(completer, func(o *generator.Options) {
		o.Logger = logger
	})

	exec := kusto.New(func(o *kusto.Options) {
		o.Endpoint = cfg.Kusto.Endpoint
		o.Database = cfg.Kusto.Database
		o.ClientID = cfg.Kusto.ClientID
		o.ClientSecret = cfg.Kusto.ClientSecret
		o.TenantID = cfg.Kusto.TenantID
		o.Logger = logger
	})

	copilot, err := kustopilot.New(gen, exec, func(o *kustopilot.Options) {
		o.Validator = validator
		o.Budget = cfg.Budget
		o.Logger = logger
	})
	if err != nil {
		slogger.Error("failed to create copilot", "error", err)
		os.Exit(1)
	}
	defer func() { _ = copilot.Close() }()

	formatter := answer.New(completer, func(o *answer.Options) {
		o.Logger = logger
	})

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/chat", chatHandler(copilot, formatter, slogger))

	server := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slogger.Info("server listening", "addr", cfg.ListenAddr, "provider", cfg.Provider)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slogger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	sig := <-sigChan
	slogger.Info("received signal, shutting down...", "signal", sig.String())

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slogger.Error("error during shutdown", "error", err)
		os.Exit(1)
	}

	slogger.Info("server stopped gracefully")
}

// newCompleter selects the completion backend. API keys come from the
// provider SDK's own environment variables.
func newCompleter(provider string) (llm.Completer, error) {
	switch provider {
	case "openai":
		return openai.New(), nil
	case "anthropic":
		return anthropic.New(), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", provider)
	}
}

// newValidator builds the guardrail validator, applying the YAML policy when
// one is configured. Unset policy fields keep the built-in defaults.
func newValidator(cfg *config.Config, logger logging.Logger) (*guard.Validator, error) {
	var policy *config.Policy
	if cfg.PolicyFile != "" {
		p, err := config.LoadPolicy(cfg.PolicyFile)
		if err != nil {
			return nil, err
		}
		policy = p
	}

	return guard.New(func(o *guard.Options) {
		o.Logger = logger
		if policy == nil {
			return
		}
		if policy.AllowedTable != "" {
			o.AllowedTable = policy.AllowedTable
		}
		if len(policy.BlockedPatterns) > 0 {
			o.BlockedPatterns = policy.BlockedPatterns
		}
		if len(policy.AggregationKeywords) > 0 {
			o.AggregationKeywords = policy.AggregationKeywords
		}
		if len(policy.LimitKeywords) > 0 {
			o.LimitKeywords = policy.LimitKeywords
		}
		if policy.RowCap > 0 {
			o.RowCap = policy.RowCap
		}
	})
}

type chatRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	Reply  string `json:"reply"`
	Status string `json:"status"`
}

// chatHandler runs the guarded pipeline for one message and formats the
// result. Failures always yield a generic reply, never raw error text.
func chatHandler(copilot *kustopilot.Copilot, formatter *answer.Formatter, slogger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Message == "" {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
		defer cancel()

		result, err := copilot.Ask(ctx, req.Message)
		if err != nil {
			slogger.Warn("request cancelled", "error", err)
			http.Error(w, "request cancelled", http.StatusRequestTimeout)
			return
		}

		reply := result.Reply
		if result.Status == pipeline.StatusSuccess && len(result.Rows) > 0 {
			reply = formatter.Format(ctx, req.Message, result.Rows)
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(chatResponse{
			Reply:  reply,
			Status: result.Status.String(),
		}); err != nil {
			slogger.Error("failed to encode response", "error", err)
		}
	}
}
