package cmd

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/critree/internal/config"
	"github.com/abhisek/critree/internal/logging"
	"github.com/abhisek/critree/internal/store"
)

// logger is built in PersistentPreRunE and shared by every subcommand.
var logger = zap.NewNop()

var rootCmd = &cobra.Command{
	Use:   "critree [structure-file]",
	Short: "Diagnose a decision criteria tree with an LLM",
	Long: "critree builds or imports a criteria tree (goal, criteria, sub-criteria)\n" +
		"and has an LLM grade every comparison as good, warn or danger.",
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbose, _ := cmd.Flags().GetBool("verbose")
		path, err := logging.DefaultPath()
		if err != nil {
			return fmt.Errorf("resolve log path: %w", err)
		}
		logger = logging.NewOrNop(path, verbose)
		logger.Debug("command started", zap.String("command", cmd.CommandPath()))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
			return fmt.Errorf("the interactive app needs a terminal; use `critree diagnose` for scripted runs")
		}
		var initial string
		if len(args) == 1 {
			initial = args[0]
		}
		return runApp(cmd, initial)
	},
}

func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides CRITREE_DB env var)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file (overrides CRITREE_CONFIG env var)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log at debug level")

	rootCmd.AddCommand(diagnoseCmd)
	rootCmd.AddCommand(treeCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(authCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then CRITREE_DB env var, then the default XDG path.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}

// resolveConfigPath returns --config, else CRITREE_CONFIG, else the XDG path.
func resolveConfigPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("config"); p != "" {
		return p, nil
	}
	return config.DefaultPath()
}

func loadConfig(cmd *cobra.Command) (*config.Config, string, error) {
	path, err := resolveConfigPath(cmd)
	if err != nil {
		return nil, "", fmt.Errorf("resolve config path: %w", err)
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, path, err
	}
	return cfg, path, nil
}

func openStore(cmd *cobra.Command) (*store.Store, error) {
	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	s, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return s, nil
}
