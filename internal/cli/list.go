package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List memories in display order",
		Run:   runList,
	}

	cmd.Flags().Bool("text-only", false, "Only output memory text, one per line")

	RootCmd.AddCommand(cmd)
}

func runList(cmd *cobra.Command, args []string) {
	textOnly, _ := cmd.Flags().GetBool("text-only")

	cfg, err := loadConfig()
	if err != nil {
		exitErr("load config", err)
	}
	st, err := openStore(cfg)
	if err != nil {
		exitErr("open store", err)
	}
	defer st.Close()

	memories, err := st.ListOrderedByTime(cmd.Context())
	if err != nil {
		exitErr("list", err)
	}

	if textOnly {
		for _, m := range memories {
			fmt.Println(m.Text)
		}
		return
	}

	b, _ := json.MarshalIndent(memories, "", "  ")
	fmt.Println(string(b))
}
