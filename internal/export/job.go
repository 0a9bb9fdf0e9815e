package export

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// State is the export job state machine position.
type State string

const (
	StateIdle       State = "idle"
	StateValidating State = "validating"
	StateEstimating State = "estimating"
	StateExporting  State = "exporting"
	StateAssembling State = "assembling"
	StateSaving     State = "saving"
	StateCompleted  State = "completed"
	StateFailed     State = "failed"
)

// Terminal reports whether a state is final and dismissible.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateFailed
}

// Job is the runtime instance of one export. Mutated only by the
// controller; everything else reads snapshots.
type Job struct {
	mu sync.Mutex

	ID      string
	Request Request

	state       State
	attempt     int
	maxAttempts int
	history     []string

	bytesReceived int64
	bytesTotal    int64 // 0 = server did not advertise a total
	progress      int   // -1 = indeterminate
	estimate      SizeEstimate

	artifactName string
	artifactPath string
	lastError    string

	createdAt time.Time
	updatedAt time.Time

	cancel context.CancelFunc
}

// NewJob creates a job in the Idle state.
func NewJob(req Request, maxAttempts int) *Job {
	now := time.Now()
	j := &Job{
		ID:          uuid.NewString(),
		Request:     req,
		state:       StateIdle,
		maxAttempts: maxAttempts,
		progress:    -1,
		createdAt:   now,
		updatedAt:   now,
	}
	j.history = append(j.history, string(StateIdle))
	return j
}

func (j *Job) setState(s State) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.state = s
	j.history = append(j.history, string(s))
	j.updatedAt = time.Now()
}

// setAttempt records the start of one network attempt.
func (j *Job) setAttempt(n int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.state = StateExporting
	j.attempt = n
	j.history = append(j.history, fmt.Sprintf("%s(%d)", StateExporting, n))
	j.updatedAt = time.Now()
}

func (j *Job) setEstimate(est SizeEstimate) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.estimate = est
	j.updatedAt = time.Now()
}

// setProgress updates byte progress. The percentage is monotonic
// non-decreasing within a job; late or repeated reports never move it
// backwards.
func (j *Job) setProgress(received, total int64, percent int, determinate bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.bytesReceived = received
	if total > 0 {
		j.bytesTotal = total
	}
	if determinate && percent > j.progress {
		j.progress = percent
	}
	j.updatedAt = time.Now()
}

func (j *Job) complete(name, path string) {
	j.mu.Lock()
	j.artifactName = name
	j.artifactPath = path
	j.progress = 100
	j.mu.Unlock()
	j.setState(StateCompleted)
}

func (j *Job) fail(err error) {
	j.mu.Lock()
	j.lastError = userMessage(err)
	j.mu.Unlock()
	j.setState(StateFailed)
}

// Snapshot is a read-only, JSON-safe copy of the job state.
type Snapshot struct {
	ID              string       `json:"job_id"`
	Request         Request      `json:"request"`
	State           State        `json:"state"`
	Attempt         int          `json:"attempt"`
	MaxAttempts     int          `json:"max_attempts"`
	History         []string     `json:"history"`
	BytesReceived   int64        `json:"bytes_received"`
	BytesTotal      int64        `json:"bytes_total,omitempty"`
	ProgressPercent *int         `json:"progress_percent,omitempty"`
	Estimate        SizeEstimate `json:"estimate"`
	ArtifactName    string       `json:"artifact_name,omitempty"`
	LastError       string       `json:"last_error,omitempty"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
}

// Snapshot returns a copy safe to serialize. ProgressPercent is nil while
// progress is indeterminate.
func (j *Job) Snapshot() Snapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	s := Snapshot{
		ID:            j.ID,
		Request:       j.Request,
		State:         j.state,
		Attempt:       j.attempt,
		MaxAttempts:   j.maxAttempts,
		History:       append([]string(nil), j.history...),
		BytesReceived: j.bytesReceived,
		BytesTotal:    j.bytesTotal,
		Estimate:      j.estimate,
		ArtifactName:  j.artifactName,
		LastError:     j.lastError,
		CreatedAt:     j.createdAt,
		UpdatedAt:     j.updatedAt,
	}
	if j.progress >= 0 {
		p := j.progress
		s.ProgressPercent = &p
	}
	return s
}

// State returns the current state.
func (j *Job) State() State {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.state
}

// ArtifactPath returns the saved artifact location, empty until completed.
func (j *Job) ArtifactPath() (name, path string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.artifactName, j.artifactPath
}

func (j *Job) setCancel(fn context.CancelFunc) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.cancel = fn
}

// abort cancels the job's context if it is still running.
func (j *Job) abort() {
	j.mu.Lock()
	fn := j.cancel
	j.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// Store is a thread-safe in-memory job registry with TTL eviction.
type Store struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewStore(ttl time.Duration) *Store {
	return &Store{jobs: make(map[string]*Job), ttl: ttl}
}

func (s *Store) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *Store) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.jobs, id)
}

// Cleanup evicts terminal jobs whose last update is older than the TTL.
func (s *Store) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		snap := job.Snapshot()
		if snap.State.Terminal() && now.Sub(snap.UpdatedAt) > s.ttl {
			delete(s.jobs, id)
		}
	}
}
