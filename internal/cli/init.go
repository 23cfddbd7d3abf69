package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the database and seed the first memory",
		Long:  "Create the database schema. An empty board is seeded with the configured first message.",
		Run:   runInit,
	}

	RootCmd.AddCommand(cmd)
}

func runInit(cmd *cobra.Command, args []string) {
	cfg, err := loadConfig()
	if err != nil {
		exitErr("load config", err)
	}

	st, err := openStore(cfg)
	if err != nil {
		exitErr("open store", err)
	}
	defer st.Close()

	ctx := cmd.Context()
	n, err := st.Count(ctx)
	if err != nil {
		exitErr("count", err)
	}
	if n > 0 {
		fmt.Printf("database ready at %s (%d memories)\n", cfg.DBPath, n)
		return
	}

	mem, err := st.Insert(ctx, cfg.FirstMessage, nil)
	if err != nil {
		exitErr("seed first memory", err)
	}
	fmt.Printf("database ready at %s, seeded memory %d: %s\n", cfg.DBPath, mem.ID, mem.Text)
}
