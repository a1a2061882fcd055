package cmd

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/pysis/internal/session"
	"github.com/abhisek/pysis/internal/store"
)

var resetCmd = &cobra.Command{
	Use:   "reset <learner-id>",
	Short: "Restart a learner's lesson day from the welcome message",
	Long: "Reset puts the learner's conversation back at the start of the lesson day\n" +
		"with an empty transcript. Progress and evaluation scores are kept.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid learner ID %q: %w", args[0], err)
		}

		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		ctx := cmd.Context()
		if _, err := st.Progress().Learner(ctx, id); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fmt.Errorf("learner %d not found", id)
			}
			return err
		}
		data, err := session.Encode(session.New())
		if err != nil {
			return err
		}
		if err := st.Sessions().SaveSession(ctx, id, data); err != nil {
			return fmt.Errorf("reset session: %w", err)
		}
		logger.Info("session reset", zap.Int64("learner_id", id))
		fmt.Fprintf(cmd.OutOrStdout(), "Learner %d will start the lesson day again.\n", id)
		return nil
	},
}
