// Package service implements the blog command line.
package service

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"quill/app/config"
	"quill/app/observability"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Version is set at build time with -ldflags "-X quill/service.Version=...".
var Version = "dev"

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "quill",
		Short: "A small blog: posts, comments, HTML pages and a JSON API",
		Long: `quill serves a blog backed by Badger, SQLite or PostgreSQL.

Configuration comes from config.yml, config.<APP_ENV>.yml and the
environment (PORT, DB_DRIVER, BADGER_PATH, DATABASE_DSN, ...).`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().String("db-driver", "", "Storage backend: badger, sqlite or postgres")
	root.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error")
	_ = viper.BindPFlag("DB_DRIVER", root.PersistentFlags().Lookup("db-driver"))
	_ = viper.BindPFlag("LOG_LEVEL", root.PersistentFlags().Lookup("log-level"))

	root.AddCommand(
		newServeCommand(),
		newInitCommand(),
		newCleanCommand(),
		newBackupCommand(),
		newRestoreCommand(),
		newSeedCommand(),
		newVersionCommand(),
	)
	return root
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	root := NewRootCommand()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	return 0
}

// loadConfig reads configuration and points the process logger at stderr.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	observability.SetupLogger(cmd.ErrOrStderr(), cfg.LogLevel)
	return cfg, nil
}

// confirm asks a yes/no question; only "y" or "Y" agree.
func confirm(cmd *cobra.Command, question string) bool {
	fmt.Fprintf(cmd.OutOrStdout(), "%s [y/N] ", question)
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && err != io.EOF {
		return false
	}
	answer := strings.TrimSpace(line)
	return answer == "y" || answer == "Y"
}
