package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lethe-board/lethe/internal/session"
)

func init() {
	cmd := &cobra.Command{
		Use:   "forget",
		Short: "Delete a memory by id",
		Long:  "Delete a memory by id. Local operators hold the privileged flag implicitly; a missing id is already forgotten.",
		Run:   runForget,
	}

	cmd.Flags().Int64P("id", "i", 0, "Memory id (required)")
	cmd.MarkFlagRequired("id")

	RootCmd.AddCommand(cmd)
}

func runForget(cmd *cobra.Command, args []string) {
	id, _ := cmd.Flags().GetInt64("id")

	cfg, err := loadConfig()
	if err != nil {
		exitErr("load config", err)
	}
	st, err := openStore(cfg)
	if err != nil {
		exitErr("open store", err)
	}
	defer st.Close()

	pipeline := buildPipeline(cfg, st, nil)

	sess := session.NewManager().New()
	sess.SetPrivileged(true)

	result, err := pipeline.Forget(cmd.Context(), sess, id)
	if err != nil {
		exitErr("forget", err)
	}
	if !result.Redirect {
		exitErr("forget", fmt.Errorf("%s (%d)", result.Message, result.Status))
	}

	fmt.Printf(`{"ok":true,"id":%d}`+"\n", id)
}
