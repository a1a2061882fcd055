package cmd

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"

	"github.com/abhisek/pysis/internal/stats"
	"github.com/abhisek/pysis/internal/ui/components"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Show learner statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		ctx := cmd.Context()
		svc := stats.NewService(st.StatsRepo(), nil, cfg.Timezone)
		out := cmd.OutOrStdout()

		students, err := svc.Students(ctx)
		if err != nil {
			return err
		}
		active, err := svc.ActiveUsersLastWeek(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Learners: %d (active in the last %d days: %d)\n\n",
			len(students), stats.ActiveWindowDays, active.ActiveUsersCount)

		if len(students) > 0 {
			fmt.Fprintf(out, "%-14s  %-20s  %-10s  %-10s  %s\n", "Telegram ID", "Name", "Started", "Last seen", "Completed days")
			fmt.Fprintln(out, strings.Repeat("─", 80))
			for _, s := range students {
				days := make([]string, 0, len(s.CompletedLessons))
				for _, l := range s.CompletedLessons {
					days = append(days, fmt.Sprint(l.LessonDay))
				}
				fmt.Fprintf(out, "%-14d  %-20s  %-10s  %-10s  %s\n",
					s.UserTelegramID, truncate(s.UserName, 20), s.StartDate, s.LastAccessedDate, strings.Join(days, ","))
			}
			fmt.Fprintln(out)
		}

		activity, err := svc.DailyActivity(ctx)
		if err != nil {
			return err
		}
		if len(activity) > 0 {
			fmt.Fprintln(out, "Daily Activity")
			fmt.Fprintln(out, strings.Repeat("─", 30))
			for _, a := range activity {
				fmt.Fprintf(out, "%-10s  %6d\n", a.Date, a.ActiveUsers)
			}
			fmt.Fprintln(out)
		}

		perf, err := svc.LessonPerformance(ctx)
		if err != nil {
			return err
		}
		if len(perf) > 0 {
			fmt.Fprintln(out, "Average Evaluation Score")
			fmt.Fprintln(out, strings.Repeat("─", 60))
			for _, p := range perf {
				bar := components.NewScoreBar(fmt.Sprintf("Día %2d", p.LessonDay), p.AverageScore, 60)
				lipgloss.Fprintln(out, bar.View())
			}
		}
		return nil
	},
}
