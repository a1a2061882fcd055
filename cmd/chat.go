package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/pysis/internal/console"
	"github.com/abhisek/pysis/internal/gateway"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with a running core service from the terminal",
	RunE: func(cmd *cobra.Command, args []string) error {
		id, _ := cmd.Flags().GetInt64("id")
		name, _ := cmd.Flags().GetString("name")
		url, _ := cmd.Flags().GetString("core-url")
		if url == "" {
			url = cfg.CoreServiceURL
		}

		// Keep logs off the terminal while the chat UI owns it.
		logger = zap.NewNop()
		core := gateway.NewCoreClient(url, cfg.CoreTimeout, nil)
		return console.Run(cmd.Context(), core, id, name)
	},
}

func init() {
	chatCmd.Flags().Int64("id", 1, "Learner (chat) identifier to talk as")
	chatCmd.Flags().String("name", "", "Learner first name")
	chatCmd.Flags().String("core-url", "", "Core service base URL (overrides CORE_SERVICE_URL)")
}
