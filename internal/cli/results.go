package cli

import (
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/billie-coop/mark/internal/api"
	"github.com/billie-coop/mark/internal/events"
)

func newResultsCommand(rt *state) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "results",
		Short: "Browse the CSV files produced by an analysis",
	}
	cmd.AddCommand(
		newResultsListCommand(rt),
		newResultsViewCommand(rt),
		newResultsSearchCommand(rt),
		newResultsStatsCommand(rt),
		newResultsWatchCommand(rt),
	)
	return cmd
}

func newResultsListCommand(rt *state) *cobra.Command {
	return &cobra.Command{
		Use:   "list OUTPUT_DIR",
		Short: "List result files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := rt.app.Client.ListResults(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printResultList(rt.printer(cmd), list)
		},
	}
}

func printResultList(p *printer, list *api.ResultList) error {
	return p.Result(list, func() {
		rows := make([][]string, len(list.AllFiles))
		for i, f := range list.AllFiles {
			rows[i] = []string{f.Type, f.Filename, formatSize(f.Size), formatModified(f.Modified), f.Path}
		}
		p.Table([]string{"Type", "File", "Size", "Modified", "Path"}, rows)
	})
}

func newResultsWatchCommand(rt *state) *cobra.Command {
	return &cobra.Command{
		Use:   "watch OUTPUT_DIR",
		Short: "List result files again each time they change",
		Long: `Follow an output folder on this machine and print the result list
whenever a CSV in it is written, replaced or removed. Runs until interrupted.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, dir := cmd.Context(), args[0]
			p := rt.printer(cmd)

			changed := rt.app.Events.Subscribe(events.ResultsChangedEvent)
			defer rt.app.Events.Unsubscribe(changed)
			if err := rt.app.WatchResults(ctx, dir); err != nil {
				return err
			}

			list := func() error {
				l, err := rt.app.Client.ListResults(ctx, dir)
				if err != nil {
					return err
				}
				return printResultList(p, l)
			}
			if err := list(); err != nil {
				return err
			}

			for {
				select {
				case <-ctx.Done():
					return nil
				case ev, ok := <-changed:
					if !ok {
						return nil
					}
					if payload, ok := ev.Payload.(events.ResultsChangedPayload); ok && !p.JSON() {
						p.Linef("%d result file(s) changed", len(payload.Paths))
					}
					if err := list(); err != nil {
						return err
					}
				}
			}
		},
	}
}

func newResultsViewCommand(rt *state) *cobra.Command {
	var limit, offset int

	cmd := &cobra.Command{
		Use:   "view FILE",
		Short: "Show a page of a result CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var opts api.ViewOptions
			if cmd.Flags().Changed("limit") {
				opts.Limit = &limit
			}
			if cmd.Flags().Changed("offset") {
				opts.Offset = &offset
			}
			view, err := rt.app.Client.ViewResult(cmd.Context(), args[0], opts)
			if err != nil {
				return err
			}
			p := rt.printer(cmd)
			return p.Result(view, func() {
				p.Table(view.Headers, view.Rows)
				p.Linef("Showing rows %d-%d of %d", view.Offset+1, view.Offset+view.RowCount, view.TotalRows)
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 100, "rows per page")
	cmd.Flags().IntVar(&offset, "offset", 0, "rows to skip")
	return cmd
}

func newResultsSearchCommand(rt *state) *cobra.Command {
	var column string

	cmd := &cobra.Command{
		Use:   "search FILE QUERY",
		Short: "Find rows of a result CSV containing a query",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := rt.app.Client.SearchResult(cmd.Context(), args[0], args[1], column)
			if err != nil {
				return err
			}
			p := rt.printer(cmd)
			return p.Result(res, func() {
				header := append([]string{"Row"}, res.Headers...)
				rows := make([][]string, len(res.Matches))
				for i, m := range res.Matches {
					rows[i] = append([]string{strconv.Itoa(m.RowIndex)}, m.RowData...)
				}
				p.Table(header, rows)
				p.Linef("%d matches for %q", res.MatchCount, res.Query)
			})
		},
	}
	cmd.Flags().StringVar(&column, "column", "", "only search this column")
	return cmd
}

func newResultsStatsCommand(rt *state) *cobra.Command {
	return &cobra.Command{
		Use:   "stats OUTPUT_DIR",
		Short: "Summarize the result files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stats, err := rt.app.Client.ResultStats(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			p := rt.printer(cmd)
			return p.Result(stats, func() {
				pairs := []string{
					"Files", strconv.Itoa(stats.TotalFiles),
					"Consumer files", strconv.Itoa(stats.ConsumerFiles),
					"Producer files", strconv.Itoa(stats.ProducerFiles),
					"Total size", formatSize(stats.TotalSize),
				}
				if stats.LatestFile != nil {
					pairs = append(pairs, "Latest", stats.LatestFile.Filename)
				}
				p.Fields(pairs...)
			})
		},
	}
}

func formatSize(n int64) string {
	return humanize.IBytes(uint64(max(n, 0)))
}

func formatModified(ts float64) string {
	if ts <= 0 {
		return ""
	}
	return time.Unix(int64(ts), 0).Format("2006-01-02 15:04")
}
