package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/billie-coop/mark/internal/api"
	"github.com/billie-coop/mark/internal/dashboard"
)

func newAnalyticsCommand(rt *state) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analytics",
		Short: "Query the analytics computed from an output folder",
	}
	cmd.AddCommand(
		newSummaryCommand(rt),
		newDistributionCommand(rt),
		newRankedCommand(rt, "keywords", "Most used classification keywords", (*api.Client).Keywords),
		newRankedCommand(rt, "libraries", "Most used ML libraries", (*api.Client).Libraries),
		newFilterCommand(rt),
	)
	return cmd
}

func newSummaryCommand(rt *state) *cobra.Command {
	return &cobra.Command{
		Use:   "summary OUTPUT_DIR",
		Short: "Show model, project and library totals",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := rt.app.Client.Summary(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			p := rt.printer(cmd)
			return p.Result(s, func() {
				p.Fields(
					"Total models", strconv.Itoa(s.TotalModels),
					"Consumers", strconv.Itoa(s.ConsumerCount),
					"Producers", strconv.Itoa(s.ProducerCount),
					"Projects", strconv.Itoa(s.TotalProjects),
					"Libraries", strconv.Itoa(s.TotalLibraries),
				)
			})
		},
	}
}

func newDistributionCommand(rt *state) *cobra.Command {
	return &cobra.Command{
		Use:   "distribution OUTPUT_DIR",
		Short: "Show the consumer/producer split",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := rt.app.Client.Distribution(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err := d.Validate(); err != nil {
				return err
			}
			p := rt.printer(cmd)
			return p.Result(d, func() {
				rows := make([][]string, len(d.Labels))
				for i, label := range d.Labels {
					rows[i] = []string{label, strconv.Itoa(d.Counts[i]), fmt.Sprintf("%.2f%%", d.Percentages[i])}
				}
				p.Table([]string{"Category", "Count", "Percent"}, rows)
			})
		},
	}
}

type rankedFunc func(*api.Client, context.Context, string, int) (*api.RankedCounts, error)

func newRankedCommand(rt *state, use, short string, fetch rankedFunc) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   use + " OUTPUT_DIR",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := fetch(rt.app.Client, cmd.Context(), args[0], limit)
			if err != nil {
				return err
			}
			p := rt.printer(cmd)
			return p.Result(r, func() {
				rows := make([][]string, len(r.Labels))
				for i, label := range r.Labels {
					count := ""
					if i < len(r.Counts) {
						count = strconv.Itoa(r.Counts[i])
					}
					rows[i] = []string{strconv.Itoa(i + 1), label, count}
				}
				p.Table([]string{"#", "Name", "Count"}, rows)
				p.Linef("%d unique", r.TotalUnique)
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", api.DefaultRankLimit, "number of entries")
	return cmd
}

func newFilterCommand(rt *state) *cobra.Command {
	var opts api.FilterOptions

	cmd := &cobra.Command{
		Use:   "filter OUTPUT_DIR",
		Short: "List classified rows by type, keyword or library",
		Example: `  mark analytics filter ./results --type consumer
  mark analytics filter ./results --library torch --limit 20`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := rt.app.Client.Filter(cmd.Context(), args[0], opts)
			if err != nil {
				return err
			}
			p := rt.printer(cmd)
			return p.Result(res, func() {
				rows := make([][]string, len(res.Results))
				for i, r := range res.Results {
					rows[i] = dashboard.ProjectRow(r).Values()
				}
				p.Table(dashboard.Columns, rows)
				p.Linef("%d rows", res.Count)
			})
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.Type, "type", "", "consumer or producer")
	f.StringVar(&opts.Keyword, "keyword", "", "classification keyword")
	f.StringVar(&opts.Library, "library", "", "ML library")
	f.IntVar(&opts.Limit, "limit", api.DefaultFilterLimit, "maximum rows")
	return cmd
}
