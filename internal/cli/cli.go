// Package cli wires the backend together behind the vsee command: a serve
// mode reading JSON requests from stdin, plus subcommands for poking at the
// pieces from a shell.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"

	"vsee.click/internal/audio"
	"vsee.click/internal/config"
	"vsee.click/internal/fs"
	"vsee.click/internal/request"
	"vsee.click/internal/store"
	"vsee.click/internal/viewer"
)

const Version = "1.0.0"

// CLI represents the command-line interface
type CLI struct {
	rootCmd          *cobra.Command
	configManager    *config.ConfigManager
	fsFactory        fs.Factory
	terminalDetector TerminalDetector

	// newEngine is swapped in tests to avoid touching a real audio device.
	newEngine func(sinkType string) (*audio.Engine, error)
}

// NewCLI creates a new CLI instance
func NewCLI() *CLI {
	rootCmd := &cobra.Command{
		Use:   "vsee",
		Short: "V-See media viewer backend",
		Long: "vsee is the backend of the V-See media viewer: it serves newline-delimited\n" +
			"JSON requests on stdin (playback, directory listing, persistence, thumbnails,\n" +
			"viewer navigation) and offers subcommands for using those pieces directly.",
		Args:          cobra.NoArgs,
		RunE:          runServeModeE,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(newPlayCommand())
	rootCmd.AddCommand(newLsCommand())
	rootCmd.AddCommand(newRootsCommand())
	rootCmd.AddCommand(newThumbCommand())
	rootCmd.AddCommand(newStateCommand())

	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	rootCmd.PersistentFlags().String("backend", "", "Audio backend (auto, malgo, speaker, command)")
	rootCmd.PersistentFlags().String("state", "", "Path to the state database")

	rootCmd.Flags().BoolP("version", "v", false, "Show version information")

	return &CLI{
		rootCmd:       rootCmd,
		configManager: config.NewConfigManager(),
		fsFactory:     fs.NewDefaultFactory(),
		newEngine: func(sinkType string) (*audio.Engine, error) {
			return audio.NewEngine(audio.NewSinkFactory(), sinkType)
		},
	}
}

type contextKey struct{}

func contextWithCLI(c *CLI) context.Context {
	return context.WithValue(context.Background(), contextKey{}, c)
}

func cliFromContext(ctx context.Context) *CLI {
	if c, ok := ctx.Value(contextKey{}).(*CLI); ok {
		return c
	}
	return nil
}

// Run executes the CLI with the given arguments and I/O streams
func (c *CLI) Run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) > 1 && (args[1] == "--version" || args[1] == "-v") {
		fmt.Fprintf(stdout, "vsee version %s\nV-See media viewer backend\n", Version)
		return 0
	}

	c.rootCmd.SetArgs(args[1:]) // Skip program name
	c.rootCmd.SetIn(stdin)
	c.rootCmd.SetOut(stdout)
	c.rootCmd.SetErr(stderr)
	c.rootCmd.SetContext(contextWithCLI(c))

	if err := c.rootCmd.Execute(); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		slog.Error("command failed", "error", err)
		return 1
	}
	return 0
}

// loadConfig resolves configuration from flags, files and environment.
func loadConfig(cmd *cobra.Command, c *CLI) (*config.Config, error) {
	configFile, _ := cmd.Flags().GetString("config")
	backendFlag, _ := cmd.Flags().GetString("backend")

	var cfg *config.Config
	var err error
	if configFile != "" {
		cfg, err = c.configManager.LoadFromFile(configFile)
		if err != nil {
			return nil, err
		}
	} else {
		cfg, err = c.configManager.LoadConfig()
		if err != nil {
			return nil, err
		}
	}

	if backendFlag != "" {
		cfg.AudioBackend = backendFlag
	}

	if err := c.configManager.ValidateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setupLogging configures slog with optional rotated file logging.
func setupLogging(cfg *config.Config, stderrWriter io.Writer) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}

	writers := []io.Writer{stderrWriter}

	if cfg.FileLogging != nil && cfg.FileLogging.Enabled {
		logPath := cfg.FileLogging.Filename
		if logPath == "" {
			logPath = config.NewXDGDirs().LogPath()
		}

		if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
			slog.Error("failed to create log directory", "path", logPath, "error", err)
		} else {
			writers = append(writers, &lumberjack.Logger{
				Filename:   logPath,
				MaxSize:    cfg.FileLogging.MaxSizeMB,
				MaxBackups: cfg.FileLogging.MaxBackups,
				MaxAge:     cfg.FileLogging.MaxAgeDays,
				Compress:   cfg.FileLogging.Compress,
			})
		}
	}

	handler := slog.NewTextHandler(io.MultiWriter(writers...), &slog.HandlerOptions{
		Level: level,
	})
	slog.SetDefault(slog.New(handler))
}

// openStore opens the state database at the --state flag path or the XDG
// default.
func openStore(cmd *cobra.Command) (*store.Store, error) {
	statePath, _ := cmd.Flags().GetString("state")
	if statePath == "" {
		var err error
		statePath, err = store.DefaultPath()
		if err != nil {
			return nil, err
		}
	}
	return store.Open(statePath)
}

// runServeModeE is the default run mode: serve JSON requests from stdin.
// When stdin is an interactive terminal there is nothing to serve, so help is
// printed instead of blocking on a read that will never come.
func runServeModeE(cmd *cobra.Command, args []string) error {
	c := cliFromContext(cmd.Context())
	if c == nil {
		return fmt.Errorf("CLI instance not found in context")
	}

	if version, _ := cmd.Flags().GetBool("version"); version {
		cmd.Printf("vsee version %s\nV-See media viewer backend\n", Version)
		return nil
	}

	cfg, err := loadConfig(cmd, c)
	if err != nil {
		return err
	}
	setupLogging(cfg, cmd.ErrOrStderr())

	if c.isInteractiveTerminal(int(os.Stdin.Fd())) {
		slog.Debug("interactive terminal detected, showing help")
		return cmd.Help()
	}

	st, err := openStore(cmd)
	if err != nil {
		return fmt.Errorf("failed to open state store: %w", err)
	}
	defer st.Close()

	// A dead audio device should not take directory listing and persistence
	// down with it; the request layer reports playback as unavailable.
	var engine request.AudioEngine
	if cfg.Enabled {
		e, err := c.newEngine(cfg.AudioBackend)
		if err != nil {
			slog.Warn("audio engine failed to start, playback disabled", "error", err)
		} else {
			engine = e
			defer e.Shutdown()
		}
	} else {
		slog.Info("audio disabled by configuration")
	}

	handler := request.NewHandler(engine, st, viewer.New(), c.fsFactory.Production())

	slog.Info("serving requests from stdin", "version", Version)
	return handler.Serve(cmd.InOrStdin(), cmd.OutOrStdout())
}
