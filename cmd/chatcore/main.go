// Command chatcore is the conversational assistant CLI for the AI Dev
// Education platform.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/aidevedu/chatcore/internal/observability"
	"github.com/aidevedu/chatcore/internal/provider"
	"github.com/aidevedu/chatcore/internal/search"
	"github.com/aidevedu/chatcore/pkg/chat"
	"github.com/aidevedu/chatcore/pkg/chat/storage"
	"github.com/aidevedu/chatcore/pkg/config"
	obsrv "github.com/aidevedu/chatcore/pkg/observability"
	"github.com/aidevedu/chatcore/pkg/report"
)

// Version is set via ldflags.
var Version = "dev"

var configFile string

func main() {
	root := &cobra.Command{
		Use:           "chatcore",
		Short:         "Chat assistant for the AI Dev Education platform",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configFile, "config", defaultConfigPath(), "configuration file")

	root.AddCommand(chatCmd(), sessionsCmd(), modelsCmd(), reportCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "chatcore.yaml"
	}
	return filepath.Join(home, ".chatcore", "config.yaml")
}

// buildService wires storage, provider, search and metrics from the
// configuration. The caller must Close the returned store.
func buildService(ctx context.Context) (*chat.Service, *chat.Store, error) {
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	backend, err := openStorage(cfg)
	if err != nil {
		return nil, nil, err
	}

	store, err := chat.NewStore(ctx, backend)
	if err != nil {
		backend.Close()
		return nil, nil, err
	}

	client := provider.NewOpenRouterClient(cfg.OpenRouterKey, cfg.BaseURL)

	var searchClient *search.Client
	if cfg.SearchURL != "" {
		searchClient = search.NewClient(cfg.SearchURL)
	}

	metrics := observability.New(prometheus.DefaultRegisterer)

	svc := chat.NewService(store, client, searchClient, metrics, chat.ServiceOptions{
		Fallback:    cfg.Chat.Fallback,
		Simulate:    cfg.Chat.Simulate,
		Temperature: float32(cfg.Temperature),
		MaxTokens:   cfg.MaxTokens,
	})
	return svc, store, nil
}

func openStorage(cfg *config.Config) (chat.Storage, error) {
	switch cfg.Storage.Backend {
	case "redis":
		return storage.NewRedisStorage(storage.RedisConfig{
			Addr:     cfg.Storage.RedisAddr,
			Password: cfg.Storage.RedisPassword,
			DB:       cfg.Storage.RedisDB,
			Prefix:   cfg.Storage.RedisPrefix,
		})
	default:
		return storage.NewFileStorage(cfg.Storage.Path)
	}
}

// startObservability serves health and metrics endpoints in the
// background for the lifetime of the process.
func startObservability(port int, store *chat.Store, svc *chat.Service) *obsrv.Server {
	checker := obsrv.NewHealthChecker()
	checker.RegisterCheck(obsrv.StorageCheck(store.VerifyStorage))
	checker.RegisterCheck(obsrv.ProviderCheck(svc.Configured))

	srv := obsrv.NewServer(port, checker)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("[observability] server: %v", err)
		}
	}()
	return srv
}

// signalContext returns a context canceled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

func reportCmd() *cobra.Command {
	var reportURL string
	cmd := &cobra.Command{
		Use:   "report <id>",
		Short: "Wait for a session report and print it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signalContext()
			defer stop()

			builder := report.NewBuilder(report.NewHTTPFetcher(reportURL))
			result, err := builder.Wait(ctx, args[0], func(r report.Report) {
				log.Printf("[report] update received")
			})
			printReport(cmd, result)
			return err
		},
	}
	cmd.Flags().StringVar(&reportURL, "url", "https://ai-dev-education.dev/api/reports", "report API base URL")
	return cmd
}

func printReport(cmd *cobra.Command, r report.Report) {
	sections := []struct{ title, body string }{
		{"Accomplishments", r.Accomplishments},
		{"Insights", r.Insights},
		{"Decisions", r.Decisions},
		{"Next Steps", r.NextSteps},
	}
	for _, s := range sections {
		body := s.body
		if body == "" {
			body = "(not yet available)"
		}
		cmd.Printf("## %s\n%s\n\n", s.title, body)
	}
}
