package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/stockintel/stockintel/config"
	"github.com/stockintel/stockintel/intel"
	"github.com/stockintel/stockintel/market"
	"github.com/stockintel/stockintel/model"
	"github.com/stockintel/stockintel/model/anthropic"
	"github.com/stockintel/stockintel/model/google"
	"github.com/stockintel/stockintel/model/openai"
	"github.com/stockintel/stockintel/workflow"
	"github.com/stockintel/stockintel/workflow/emit"
	"github.com/stockintel/stockintel/workflow/store"
)

type rootFlags struct {
	configPath  string
	jsonEvents  bool
	quiet       bool
	metricsAddr string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:   "stockintel",
		Short: "Stock analysis workflow with human approval",
		Long: `stockintel routes a stock analysis task through data gathering, LLM
synthesis and human review. Progress is checkpointed after every step, so a
session suspended for review can be resumed later, even from a different
process, with "stockintel resume".`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&flags.configPath, "config", "stockintel.yaml", "path to YAML config file")
	cmd.PersistentFlags().BoolVar(&flags.jsonEvents, "json-events", false, "emit step events as JSONL on stderr")
	cmd.PersistentFlags().BoolVarP(&flags.quiet, "quiet", "q", false, "suppress step events")
	cmd.PersistentFlags().StringVar(&flags.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address (e.g. :9090)")

	cmd.AddCommand(newAnalyzeCmd(flags))
	cmd.AddCommand(newCompareCmd(flags))
	cmd.AddCommand(newResumeCmd(flags))

	return cmd
}

// app holds the wired service and the resources it owns.
type app struct {
	service *intel.Service
	closers []func() error
}

func (a *app) Close() {
	for _, closeFn := range a.closers {
		_ = closeFn()
	}
}

func buildApp(ctx context.Context, flags *rootFlags) (*app, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	a := &app{}

	st, err := buildStore(ctx, cfg, a)
	if err != nil {
		return nil, err
	}

	chat, err := buildModel(ctx, cfg, a)
	if err != nil {
		a.Close()
		return nil, err
	}

	opts := []intel.ServiceOption{}
	if !flags.quiet {
		opts = append(opts, intel.WithEmitter(emit.NewLogEmitter(os.Stderr, flags.jsonEvents)))
	}
	if flags.metricsAddr != "" {
		registry := prometheus.NewRegistry()
		opts = append(opts, intel.WithMetrics(workflow.NewMetrics(registry)))
		serveMetrics(flags.metricsAddr, registry)
	}

	svc, err := intel.NewService(market.NewYahooProvider(), chat, st, opts...)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.service = svc
	return a, nil
}

func buildStore(ctx context.Context, cfg config.Config, a *app) (store.Store[intel.SessionState], error) {
	switch cfg.StoreBackend {
	case config.StoreSQLite:
		if dir := filepath.Dir(cfg.SQLitePath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create checkpoint directory: %w", err)
			}
		}
		st, err := store.NewSQLiteStore[intel.SessionState](cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, st.Close)
		return st, nil
	case config.StoreMySQL:
		st, err := store.NewMySQLStore[intel.SessionState](cfg.MySQLDSN)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, st.Close)
		return st, nil
	case config.StoreRedis:
		st, err := store.NewRedisStore[intel.SessionState](ctx, cfg.RedisURL, 0)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, st.Close)
		return st, nil
	default:
		return store.NewMemStore[intel.SessionState](), nil
	}
}

func buildModel(ctx context.Context, cfg config.Config, a *app) (model.ChatModel, error) {
	switch cfg.Provider {
	case config.ProviderOpenRouter:
		return openai.New(cfg.APIKey, cfg.Model,
			openai.WithBaseURL(openai.OpenRouterBaseURL),
			openai.WithTemperature(cfg.Temperature))
	case config.ProviderOpenAI:
		return openai.New(cfg.APIKey, cfg.Model,
			openai.WithTemperature(cfg.Temperature))
	case config.ProviderAnthropic:
		return anthropic.New(cfg.APIKey, cfg.Model)
	case config.ProviderGoogle:
		client, err := google.New(ctx, cfg.APIKey, cfg.Model)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, client.Close)
		return client, nil
	default:
		return &model.Mock{Replies: []string{"Recommendation: HOLD\nConfidence: Low\nOffline mode, no model configured."}}, nil
	}
}

func serveMetrics(addr string, registry *prometheus.Registry) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Fprintln(os.Stderr, "metrics server:", err)
		}
	}()
}
