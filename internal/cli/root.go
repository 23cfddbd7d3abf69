// Package cli implements the lethe CLI commands.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lethe-board/lethe/internal/board"
	"github.com/lethe-board/lethe/internal/command"
	"github.com/lethe-board/lethe/internal/config"
	"github.com/lethe-board/lethe/internal/danbooru"
	"github.com/lethe-board/lethe/internal/probe"
	"github.com/lethe-board/lethe/internal/store"
)

var (
	configPath string
	dbPath     string
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "lethe",
	Short: "Memories that vanish",
	Long:  "A tiny ephemeral message board. Ten memories, oldest first out. SQLite-backed, single binary.",
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "lethe.yaml", "Config file path")
	RootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Database path (overrides config)")
}

func loadConfig() (config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return cfg, err
	}
	if dbPath != "" {
		cfg.DBPath = dbPath
	}
	return cfg, nil
}

func openStore(cfg config.Config) (*store.SQLiteStore, error) {
	return store.NewSQLiteStore(cfg.DBPath, cfg.Capacity)
}

// buildPipeline assembles the full submission pipeline with the real
// image probe and tag-search client.
func buildPipeline(cfg config.Config, st store.Store, logger *zap.Logger) *board.Pipeline {
	registry := command.NewRegistry(command.Builtin(cfg, danbooru.NewClient(cfg.Danbooru))...)
	prober := probe.NewHTTPProber(cfg.Thumb)
	return board.New(cfg, st, registry, prober, logger)
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
