package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"plotchat/internal/chat"
	"plotchat/internal/config"
	"plotchat/internal/remote"
	"plotchat/internal/ui"
)

// app junta las dependencias que comparten todos los subcomandos.
type app struct {
	cfg    *config.ClientConfig
	logger *zap.Logger
	tokens *remote.TokenFile
	client *remote.Client
}

var (
	baseURL  string
	debugLog bool
	current  *app
)

var rootCmd = &cobra.Command{
	Use:   "plotchat",
	Short: "Terminal chat client with inline charts",
	Long: `plotchat talks to the plotchat service. Without a subcommand it opens
the full-screen chat; replies "#", "#1".."#4" render the plot selector and
sample charts inline.`,
	PersistentPreRunE: setup,
	PersistentPostRun: func(*cobra.Command, []string) {
		if current != nil {
			_ = current.logger.Sync()
		}
	},
	RunE:          runTUI,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "", "Service base URL (overrides CHAT_BASE_URL)")
	rootCmd.PersistentFlags().BoolVar(&debugLog, "debug", false, "Enable debug logging")
}

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadClientConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}

	logger, err := newLogger(cfg.LogFile, debugLog)
	if err != nil {
		return err
	}

	tokenPath := cfg.TokenFile
	if tokenPath == "" {
		if tokenPath, err = remote.DefaultTokenPath(); err != nil {
			return err
		}
	}
	tokens := remote.NewTokenFile(tokenPath)

	current = &app{
		cfg:    cfg,
		logger: logger,
		tokens: tokens,
		client: remote.NewClient(cfg.BaseURL, tokens, cfg.HTTPTimeout, logger),
	}
	logger.Debug("client configured",
		zap.String("command", cmd.Name()),
		zap.String("base_url", cfg.BaseURL),
		zap.String("token_file", tokenPath),
	)
	return nil
}

// newLogger escribe a un archivo: la terminal es de la UI.
func newLogger(path string, debug bool) (*zap.Logger, error) {
	if path == "" {
		dir, err := os.UserCacheDir()
		if err != nil {
			return nil, fmt.Errorf("user cache dir: %w", err)
		}
		path = filepath.Join(dir, "plotchat", "plotchat.log")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}

	zcfg := zap.NewProductionConfig()
	zcfg.OutputPaths = []string{path}
	zcfg.ErrorOutputPaths = []string{path}
	if debug {
		zcfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	logger, err := zcfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger, nil
}

// newController arma el nucleo del chat sobre remote.
func (a *app) newController(r chat.Remote) *chat.Controller {
	store := chat.NewStore(a.cfg.TitleMax, time.Now)
	return chat.NewController(a.logger, store, r, chat.NewIdentityPolicy(a.cfg.EphemeralThreshold), chat.Options{
		PlaceholderTitle: a.cfg.PlaceholderTitle,
		FAQs:             a.cfg.FAQs,
	})
}

func runTUI(cmd *cobra.Command, _ []string) error {
	a := current
	ctrl := a.newController(a.client)

	p := tea.NewProgram(ui.New(cmd.Context(), ctrl, a.logger), tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("error running app: %w", err)
	}
	return nil
}
