package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lethe-board/lethe/internal/session"
)

func init() {
	cmd := &cobra.Command{
		Use:   "post [text]",
		Short: "Post a memory",
		Long:  "Post a memory through the full submission pipeline (validation, slash commands, eviction). Text can be a positional arg or piped via stdin.",
		Run:   runPost,
	}

	RootCmd.AddCommand(cmd)
}

func runPost(cmd *cobra.Command, args []string) {
	// Positional arg first, then check stdin.
	var text string
	if len(args) > 0 {
		text = strings.Join(args, " ")
	} else {
		stat, _ := os.Stdin.Stat()
		if (stat.Mode() & os.ModeCharDevice) == 0 {
			b, err := io.ReadAll(os.Stdin)
			if err != nil {
				exitErr("read stdin", err)
			}
			text = string(b)
		}
	}

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

	result, err := pipeline.Submit(cmd.Context(), session.NewManager().New(), text)
	if err != nil {
		exitErr("post", err)
	}
	if !result.Redirect {
		exitErr("post", fmt.Errorf("%s (%d)", result.Message, result.Status))
	}

	memories, err := st.ListOrderedByTime(cmd.Context())
	if err != nil || len(memories) == 0 {
		fmt.Println(`{"ok":true}`)
		return
	}
	b, _ := json.Marshal(memories[len(memories)-1])
	fmt.Println(string(b))
}
