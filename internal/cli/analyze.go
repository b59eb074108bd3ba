package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/billie-coop/mark/internal/app"
	"github.com/billie-coop/mark/internal/events"
	"github.com/billie-coop/mark/internal/poller"
)

// ErrAnalysisCancelled is returned when an analysis is interrupted.
var ErrAnalysisCancelled = errors.New("analysis cancelled")

func newAnalyzeCommand(rt *state) *cobra.Command {
	var (
		req    app.StartRequest
		noPoll bool
	)

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Start an analysis and follow its progress",
		Long: `Validate the input and output folders, start an analysis job on the
backend and print its progress until it finishes.

Interrupting the command cancels the job.`,
		Example: `  mark analyze --input ./projects --output-dir ./results
  mark analyze -i ./projects -d ./results --github-csv repos.csv
  mark analyze -i ./projects -d ./results --no-poll -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runAnalyze(cmd, rt, req, noPoll)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&req.InputPath, "input", "i", "", "folder holding the projects to analyze")
	f.StringVarP(&req.OutputPath, "output-dir", "d", "", "folder the result CSVs are written to")
	f.StringVar(&req.GithubCSV, "github-csv", "", "CSV of GitHub repositories to clone first")
	f.BoolVar(&noPoll, "no-poll", false, "print the job id and return without waiting")
	_ = cmd.MarkFlagRequired("input")
	_ = cmd.MarkFlagRequired("output-dir")

	return cmd
}

func runAnalyze(cmd *cobra.Command, rt *state, req app.StartRequest, noPoll bool) error {
	a := rt.app
	p := rt.printer(cmd)
	ctx := cmd.Context()

	progress := a.Events.Subscribe(events.AnalysisProgressEvent)
	defer a.Events.Unsubscribe(progress)

	run, err := a.StartAnalysis(ctx, req)
	if err != nil {
		return err
	}

	if noPoll {
		return p.Result(map[string]string{"job_id": run.JobID}, func() {
			p.Linef("Started job %s", run.JobID)
		})
	}
	if !p.JSON() {
		p.Linef("Started job %s", run.JobID)
	}

	done := make(chan poller.Update, 1)
	go func() { done <- run.Wait() }()

	var final poller.Update
loop:
	for {
		select {
		case ev, ok := <-progress:
			if ok && !p.JSON() {
				printProgress(p, ev)
			}
		case final = <-done:
			break loop
		case <-ctx.Done():
			err := a.CancelAnalysis(context.WithoutCancel(ctx))
			if err != nil && !errors.Is(err, app.ErrNoAnalysis) {
				return err
			}
			final = run.Wait()
			break loop
		}
	}
	drainProgress(p, progress)

	switch final.State {
	case poller.StateCompleted:
		return p.Result(final.Job, func() {
			p.Linef("%s", final.Message)
			p.Linef("Results written to %s", req.OutputPath)
		})
	case poller.StateCancelled:
		return ErrAnalysisCancelled
	default:
		if final.Err != nil {
			return final.Err
		}
		return errors.New(final.Message)
	}
}

func printProgress(p *printer, ev events.Event) {
	payload, ok := ev.Payload.(events.AnalysisPayload)
	if !ok {
		return
	}
	pct := 0
	if payload.Job != nil {
		pct = payload.Job.Progress
	}
	p.Linef("[%3d%%] %s", pct, payload.Message)
}

func drainProgress(p *printer, ch <-chan events.Event) {
	for {
		select {
		case ev, ok := <-ch:
			if !ok {
				return
			}
			if !p.JSON() {
				printProgress(p, ev)
			}
		default:
			return
		}
	}
}
