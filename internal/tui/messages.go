package tui

import (
	"github.com/billie-coop/mark/internal/api"
	"github.com/billie-coop/mark/internal/app"
	"github.com/billie-coop/mark/internal/dashboard"
)

// analysisStartedMsg reports the outcome of starting an analysis.
type analysisStartedMsg struct {
	run *app.Analysis
	err error
}

type analysisCancelMsg struct {
	err error
}

// autoDismissMsg fires AutoDismiss after a job completed.
type autoDismissMsg struct {
	jobID string
}

type resultsLoadedMsg struct {
	list *api.ResultList
	err  error
}

type resultFileMsg struct {
	file api.ResultFile
	view *api.CSVView
	err  error
}

type dashboardLoadedMsg struct {
	snap *dashboard.Snapshot
}

type drillMsg struct {
	drill *dashboard.Drill
	err   error
}

// chatReplyMsg ends an assistant request.
type chatReplyMsg struct {
	err error
}

type chatClearedMsg struct{}

type llmStatusMsg struct {
	available bool
	err       error
}
