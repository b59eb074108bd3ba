package cli

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/billie-coop/mark/internal/api"
)

func newJobsCommand(rt *state) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "Inspect and control backend analysis jobs",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List all jobs",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				jobs, err := rt.app.Client.ListJobs(cmd.Context())
				if err != nil {
					return err
				}
				p := rt.printer(cmd)
				return p.Result(jobs, func() {
					rows := make([][]string, len(jobs))
					for i, j := range jobs {
						rows[i] = []string{j.ID, string(j.Status), strconv.Itoa(j.Progress) + "%", j.InputPath, j.OutputPath, j.StartedAt}
					}
					p.Table([]string{"ID", "Status", "Progress", "Input", "Output", "Started"}, rows)
				})
			},
		},
		&cobra.Command{
			Use:   "status JOB_ID",
			Short: "Show the status of a job",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				job, err := rt.app.Client.AnalysisStatus(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				p := rt.printer(cmd)
				return p.Result(job, func() { printJob(p, job) })
			},
		},
		&cobra.Command{
			Use:   "logs JOB_ID",
			Short: "Print the output log of a job",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				logs, err := rt.app.Client.JobLogs(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				p := rt.printer(cmd)
				return p.Result(logs, func() {
					for _, line := range logs.Logs {
						p.Linef("%s", line)
					}
				})
			},
		},
		&cobra.Command{
			Use:   "cancel JOB_ID",
			Short: "Cancel a running job",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				resp, err := rt.app.Client.CancelAnalysis(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				p := rt.printer(cmd)
				return p.Result(resp, func() {
					msg := resp.String("message")
					if msg == "" {
						msg = "Job " + args[0] + " cancelled"
					}
					p.Linef("%s", msg)
				})
			},
		},
	)

	return cmd
}

func printJob(p *printer, j *api.Job) {
	pairs := []string{
		"ID", j.ID,
		"Status", string(j.Status),
		"Progress", strconv.Itoa(j.Progress) + "%",
		"Message", j.Message,
		"Input", j.InputPath,
		"Output", j.OutputPath,
		"Started", j.StartedAt,
	}
	if j.CompletedAt != "" {
		pairs = append(pairs, "Completed", j.CompletedAt)
	}
	if j.Error != "" {
		pairs = append(pairs, "Error", j.Error)
	}
	p.Fields(pairs...)
}
