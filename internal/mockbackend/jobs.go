package mockbackend

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/billie-coop/mark/internal/api"
)

// stageMessages are reported while a job runs, one per status poll.
var stageMessages = []string{
	"Cloning repositories",
	"Scanning source files",
	"Classifying ML producers",
	"Classifying ML consumers",
	"Writing results",
}

const (
	completedMessage = "Analysis completed successfully"
	failedMessage    = "Analysis failed"
)

type job struct {
	api.Job
	polls int
}

// jobStore advances jobs one stage per status request.
type jobStore struct {
	mu     sync.Mutex
	jobs   map[string]*job
	order  []string
	nextID int
	steps  int
	now    func() time.Time
}

func newJobStore(steps int) *jobStore {
	if steps <= 0 {
		steps = 1
	}
	return &jobStore{
		jobs:  make(map[string]*job),
		steps: steps,
		now:   time.Now,
	}
}

func (s *jobStore) stamp() string {
	return s.now().UTC().Format(time.RFC3339)
}

func (s *jobStore) start(in, out, csv string) api.Job {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	id := fmt.Sprintf("job-%d", s.nextID)
	j := &job{Job: api.Job{
		ID:         id,
		Status:     api.StatusPending,
		Message:    "Analysis queued",
		InputPath:  in,
		OutputPath: out,
		GithubCSV:  csv,
		StartedAt:  s.stamp(),
		OutputLog:  []string{"Job created"},
	}}
	s.jobs[id] = j
	s.order = append(s.order, id)
	return j.Job
}

// poll returns the job after moving it one stage forward.
func (s *jobStore) poll(id string) (api.Job, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.jobs[id]
	if !ok {
		return api.Job{}, false
	}
	if j.Status.Terminal() {
		return j.Job, true
	}

	j.polls++
	switch {
	case strings.Contains(j.InputPath, "fail"):
		j.Status = api.StatusFailed
		j.Error = "input folder has no analyzable projects"
		j.Message = failedMessage + ": " + j.Error
		j.CompletedAt = s.stamp()
	case j.polls >= s.steps:
		j.Status = api.StatusCompleted
		j.Progress = 100
		j.Message = completedMessage
		j.CompletedAt = s.stamp()
	default:
		j.Status = api.StatusRunning
		j.Progress = j.polls * 100 / s.steps
		j.Message = stageMessages[(j.polls-1)%len(stageMessages)]
	}
	j.OutputLog = append(j.OutputLog, j.Message)
	return j.Job, true
}

func (s *jobStore) cancel(id string) (api.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.jobs[id]
	if !ok {
		return api.Job{}, errJobNotFound
	}
	if j.Status.Terminal() {
		return j.Job, fmt.Errorf("job is already %s", j.Status)
	}
	j.Status = api.StatusCancelled
	j.Message = "Analysis cancelled"
	j.CompletedAt = s.stamp()
	j.OutputLog = append(j.OutputLog, j.Message)
	return j.Job, nil
}

func (s *jobStore) get(id string) (api.Job, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[id]
	if !ok {
		return api.Job{}, false
	}
	return j.Job, true
}

func (s *jobStore) list() []api.Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]api.Job, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.jobs[id].Job)
	}
	return out
}
