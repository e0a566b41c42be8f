package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/lexcodex/treejumper/cmd/internal/workspacecfg"
)

var (
	flagWorkspace string
	flagConfig    string
	flagLang      string
	flagVerbose   bool
	flagJSON      bool

	workspaceCfg *workspacecfg.WorkspaceConfig
	resolvedCfg  *workspacecfg.Resolved
)

func main() {
	// A missing .env is normal.
	_ = godotenv.Load()
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "treejumper",
		Short:         "Jump between classes, functions and other constructs in C, C++, Python, Rust and C# sources",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return loadWorkspace()
		},
	}
	root.PersistentFlags().StringVar(&flagWorkspace, "workspace", envOrDefault("TREEJUMPER_WORKSPACE", "."), "Workspace root (config, index and .env live here)")
	root.PersistentFlags().StringVar(&flagConfig, "config", envOrDefault("TREEJUMPER_CONFIG", ""), "Path to config file (default <workspace>/.treejumper/config.yaml)")
	root.PersistentFlags().StringVar(&flagLang, "lang", envOrDefault("TREEJUMPER_LANG", ""), "Force the source language (c, cpp, python, rust, csharp or an alias)")
	root.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", envBool("TREEJUMPER_VERBOSE", false), "Log progress to stderr")
	root.PersistentFlags().BoolVar(&flagJSON, "json", false, "Print results as JSON")

	root.AddCommand(
		newLangsCmd(),
		newOutlineCmd(),
		newAtCmd(),
		newStepCmd(),
		newIndexCmd(),
		newSearchCmd(),
		newServeCmd(),
		newBrowseCmd(),
		newConfigCmd(),
	)
	return root
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// envBool parses key with strconv.ParseBool; unset or malformed values give
// fallback.
func envBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

// loadWorkspace reads the workspace .env and config. Environment values
// already set win over the .env file.
func loadWorkspace() error {
	abs, err := filepath.Abs(flagWorkspace)
	if err != nil {
		return err
	}
	flagWorkspace = abs
	envPath := filepath.Join(flagWorkspace, ".env")
	if _, err := os.Stat(envPath); err == nil {
		if err := godotenv.Load(envPath); err != nil {
			return fmt.Errorf("load %s: %w", envPath, err)
		}
	}
	cfg, err := workspacecfg.Load(flagWorkspace, flagConfig)
	if err != nil {
		return err
	}
	resolved, err := cfg.Normalize()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	workspaceCfg = cfg
	resolvedCfg = resolved
	return nil
}

func newLogger(prefix string) *log.Logger {
	if !flagVerbose {
		return log.New(io.Discard, "", 0)
	}
	return log.New(os.Stderr, prefix+" ", log.LstdFlags)
}
