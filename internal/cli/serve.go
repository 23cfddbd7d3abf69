package cli

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lethe-board/lethe/internal/server"
	"github.com/lethe-board/lethe/internal/session"
)

func init() {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the board over HTTP",
		Run:   runServe,
	}

	cmd.Flags().StringP("listen", "l", "", "Listen address (overrides config)")

	RootCmd.AddCommand(cmd)
}

func runServe(cmd *cobra.Command, args []string) {
	cfg, err := loadConfig()
	if err != nil {
		exitErr("load config", err)
	}
	if listen, _ := cmd.Flags().GetString("listen"); listen != "" {
		cfg.Listen = listen
	}

	logger, err := zap.NewProduction()
	if err != nil {
		exitErr("init logger", err)
	}
	defer logger.Sync()

	st, err := openStore(cfg)
	if err != nil {
		exitErr("open store", err)
	}
	defer st.Close()

	pipeline := buildPipeline(cfg, st, logger)
	srv := server.New(cfg, pipeline, session.NewManager(), logger)

	if err := srv.ListenAndServe(); err != nil {
		exitErr("serve", err)
	}
}
