package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/pysis/internal/knowledge"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Build the per-day lesson indexes from dia_N.pdf files",
	RunE: func(cmd *cobra.Command, args []string) error {
		if dir, _ := cmd.Flags().GetString("dir"); dir != "" {
			cfg.CourseDir = dir
		}
		if err := cfg.ValidateIndex(); err != nil {
			return err
		}
		workers, _ := cmd.Flags().GetInt("workers")
		if workers <= 0 {
			workers = cfg.IngestWorkers
		}

		ctx := cmd.Context()
		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		embedder, err := newEmbedder(ctx)
		if err != nil {
			return fmt.Errorf("embedder: %w", err)
		}

		in := &knowledge.Ingester{
			Dir:      cfg.CourseDir,
			Splitter: knowledge.DefaultSplitter(),
			Embedder: embedder,
			Repo:     st.ChunkRepo(),
			Workers:  workers,
			Logger:   logger,
		}
		report, err := in.Run(ctx)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, day := range sortedDays(report.Indexed) {
			fmt.Fprintf(out, "Día %2d  %4d fragmentos\n", day, report.Indexed[day])
		}
		if len(report.Skipped) > 0 {
			fmt.Fprintf(out, "Sin material: %v\n", report.Skipped)
		}
		for _, day := range sortedDays(report.Failed) {
			fmt.Fprintf(out, "Día %2d  error: %v\n", day, report.Failed[day])
		}
		logger.Info("indexing finished",
			zap.Int("indexed", len(report.Indexed)),
			zap.Int("skipped", len(report.Skipped)),
			zap.Int("failed", len(report.Failed)),
		)
		if len(report.Failed) > 0 {
			return fmt.Errorf("%d day(s) failed to index", len(report.Failed))
		}
		return nil
	},
}

var indexStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show which lesson days are indexed",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		days, err := st.ChunkRepo().IndexedDays(cmd.Context())
		if err != nil {
			return fmt.Errorf("query indexed days: %w", err)
		}
		out := cmd.OutOrStdout()
		if len(days) == 0 {
			fmt.Fprintln(out, "No lesson days indexed yet.")
			return nil
		}
		for _, day := range sortedDays(days) {
			fmt.Fprintf(out, "Día %2d  %4d fragmentos\n", day, days[day])
		}
		return nil
	},
}

func sortedDays[V any](m map[int]V) []int {
	days := make([]int, 0, len(m))
	for d := range m {
		days = append(days, d)
	}
	sort.Ints(days)
	return days
}

func init() {
	indexCmd.Flags().String("dir", "", "Directory holding dia_N.pdf files (overrides PYSIS_COURSE_DIR)")
	indexCmd.Flags().IntP("workers", "w", 0, "Days indexed concurrently (overrides PYSIS_INGEST_WORKERS)")
	indexCmd.AddCommand(indexStatusCmd)
}
