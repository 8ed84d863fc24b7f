package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/konveyor/makerun/pkg/config"
	"github.com/konveyor/makerun/pkg/session"
	"github.com/konveyor/makerun/pkg/util"
	"github.com/konveyor/makerun/pkg/workspace"
	"github.com/spf13/cobra"
)

var (
	verbose     bool
	configFile  string
	currentFile string
	roots       []string
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "makerun",
		Short: "Discover and run make targets",
		Long: `makerun - find the Makefile for what you are working on, list its
targets and run them, streaming the build output.

The working directory is the directory of --file when it holds a Makefile,
otherwise the first --root that does (default: the current directory).`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			util.InitLogger(verbose)
		},
	}

	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Path to configuration file")
	rootCmd.PersistentFlags().StringVarP(&currentFile, "file", "f", "", "File being worked on; its directory is tried first")
	rootCmd.PersistentFlags().StringArrayVarP(&roots, "root", "r", nil, "Workspace root directory (repeatable, default: current directory)")

	// Add subcommands
	rootCmd.AddCommand(NewRunCmd())
	rootCmd.AddCommand(NewPickCmd())
	rootCmd.AddCommand(NewTargetsCmd())
	rootCmd.AddCommand(NewWatchCmd())
	rootCmd.AddCommand(NewValidateCmd())
	rootCmd.AddCommand(NewConfigCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rootCmd := NewRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// loadConfig finds and loads the configuration
func loadConfig() (*config.Config, error) {
	log := util.GetLogger()

	cfg, source, err := config.Discover(configFile)
	if err != nil {
		return nil, err
	}

	if source != "" {
		log.V(1).Info("Loaded configuration", "file", source)
	} else {
		log.V(1).Info("Using default configuration")
	}

	return cfg, nil
}

// newSession loads the configuration and creates a session from it
func newSession(opts ...session.Option) (*session.Session, *config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	return session.New(cfg, opts...), cfg, nil
}

// workspaceContext builds the workspace context from the global flags
func workspaceContext() (workspace.Context, error) {
	wctx := workspace.Context{}

	if currentFile != "" {
		abs, err := filepath.Abs(currentFile)
		if err != nil {
			return wctx, fmt.Errorf("failed to resolve file path: %w", err)
		}
		wctx.CurrentFile = abs
	}

	candidates := roots
	if len(candidates) == 0 {
		cwd, err := os.Getwd()
		if err != nil {
			return wctx, fmt.Errorf("failed to get current directory: %w", err)
		}
		candidates = []string{cwd}
	}

	for _, root := range candidates {
		abs, err := filepath.Abs(root)
		if err != nil {
			return wctx, fmt.Errorf("failed to resolve root %s: %w", root, err)
		}
		wctx.Roots = append(wctx.Roots, abs)
	}

	return wctx, nil
}
