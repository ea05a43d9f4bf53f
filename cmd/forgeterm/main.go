package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/IceWhaleTech/forgeterm"
	"github.com/IceWhaleTech/forgeterm/internal/tui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

const version = "0.1.0"

func main() {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: forgeterm [options]\n\n")
		fmt.Fprintf(os.Stderr, "forgeterm is a sandboxed terminal with a virtual filesystem and\n")
		fmt.Fprintf(os.Stderr, "allowlist-guarded developer tools.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		pflag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  forgeterm                     # Interactive terminal\n")
		fmt.Fprintf(os.Stderr, "  forgeterm -e 'ls -la'         # Run one command and exit\n")
		fmt.Fprintf(os.Stderr, "  forgeterm --serve -l :3001    # Start the HTTP API\n")
		fmt.Fprintf(os.Stderr, "  forgeterm --mount /mnt/forge  # Interactive terminal with a FUSE view\n")
	}

	cfg, err := forgeterm.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	serveFlag := pflag.BoolP("serve", "s", false, "Start the HTTP API server")
	listenFlag := pflag.StringP("listen", "l", cfg.ListenAddr, "Listen address for --serve")
	execFlag := pflag.StringP("exec", "e", "", "Run a single command and exit with its exit code")
	mountFlag := pflag.StringP("mount", "m", "", "Mount a read-only FUSE view of the session home at DIR")
	realExecFlag := pflag.Bool("real-exec", cfg.AllowRealExecution, "Run allowlisted tools as real subprocesses")
	logLevelFlag := pflag.String("log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
	logFormatFlag := pflag.String("log-format", cfg.LogFormat, "Log format (json, console)")
	versionFlag := pflag.BoolP("version", "V", false, "Print version information")
	helpFlag := pflag.BoolP("help", "h", false, "Show this help message")
	pflag.Parse()

	if *helpFlag {
		pflag.Usage()
		return
	}

	if *versionFlag {
		fmt.Printf("forgeterm version %s\n", version)
		return
	}

	cfg.ListenAddr = *listenFlag
	cfg.AllowRealExecution = *realExecFlag
	cfg.LogLevel = *logLevelFlag
	cfg.LogFormat = *logFormatFlag

	switch {
	case *serveFlag:
		os.Exit(runServeMode(cfg))
	case *execFlag != "":
		os.Exit(runExecMode(cfg, *execFlag))
	default:
		os.Exit(runTuiMode(cfg, *mountFlag))
	}
}

func runServeMode(cfg *forgeterm.Config) int {
	logger, err := forgeterm.NewLogger(cfg.LogConfig())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
		return 1
	}
	defer logger.Sync()

	execCfg := cfg.ExecutionConfig()
	manager := forgeterm.NewSessionManager(cfg.MaxSessions, func(id string) *forgeterm.Session {
		return forgeterm.NewSession(forgeterm.SessionOptions{
			ID:        id,
			Execution: execCfg,
			Logger:    logger,
		})
	}, logger)

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           forgeterm.NewAPIRouter(manager, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting",
			zap.String("addr", cfg.ListenAddr),
			zap.Bool("real_execution", execCfg.AllowRealExecution),
			zap.Int("max_sessions", cfg.MaxSessions))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", zap.Error(err))
			return 1
		}
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown failed", zap.Error(err))
			return 1
		}
	}
	return 0
}

func runExecMode(cfg *forgeterm.Config, command string) int {
	logCfg := cfg.LogConfig()
	if logCfg.OutputPath == "" {
		logCfg.OutputPath = "stderr"
	}
	logger, err := forgeterm.NewLogger(logCfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
		return 1
	}
	defer logger.Sync()

	s := forgeterm.NewSession(forgeterm.SessionOptions{
		Execution: cfg.ExecutionConfig(),
		Logger:    logger,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result := s.ProcessCommandContext(ctx, command)
	if result.Output != "" {
		fmt.Println(result.Output)
	}
	return result.ExitCode % 256
}

func runTuiMode(cfg *forgeterm.Config, mountPoint string) int {
	// The TUI owns the terminal, so logs only go to a file when asked for.
	logger := zap.NewNop()
	if cfg.LogFile != "" {
		l, err := forgeterm.NewLogger(cfg.LogConfig())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
			return 1
		}
		logger = l
	}
	defer logger.Sync()

	s := forgeterm.NewSession(forgeterm.SessionOptions{
		Execution: cfg.ExecutionConfig(),
		Logger:    logger,
	})
	lock := &sync.Mutex{}

	if mountPoint != "" {
		unmount, err := mountSession(s, lock, mountPoint)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error mounting %s: %v\n", mountPoint, err)
			return 1
		}
		defer unmount()
		logger.Info("session mounted", zap.String("mount_point", mountPoint))
	}

	m := tui.InitialModel(s, lock)
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running terminal: %v\n", err)
		return 1
	}
	return 0
}
