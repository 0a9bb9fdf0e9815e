package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/davargas/facturex/internal/document"
	"github.com/davargas/facturex/internal/report"
)

// ErrJobNotFound is returned for lookups of unknown or evicted jobs.
var ErrJobNotFound = errors.New("export job not found")

// DataClient is the upstream invoice data endpoint. CSV exports come back
// as a streamable response; PDF exports fetch raw rows and aggregates.
type DataClient interface {
	ExportCSV(ctx context.Context, req Request) (*http.Response, error)
	FetchReportData(ctx context.Context, req Request) (*report.Data, error)
}

// Options tunes a Controller.
type Options struct {
	OutputDir       string
	MaxAttempts     int
	JobTTL          time.Duration
	BackoffSchedule []time.Duration // overridable for tests; nil = default

	// Chart raster size in pixels; zero values take the assembler
	// defaults.
	ChartWidth  int
	ChartHeight int
}

// Controller drives the export state machine:
// Idle -> Validating -> Estimating -> Exporting(n) -> [Assembling] ->
// Saving -> Completed, with error edges to Failed. One job runs at a
// time; a second trigger while one is in flight is rejected.
type Controller struct {
	client    DataClient
	assembler *document.Assembler
	notifier  Notifier
	log       *slog.Logger
	opts      Options

	jobs *Store

	mu     sync.Mutex
	active *Job

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewController(client DataClient, assembler *document.Assembler, notifier Notifier, log *slog.Logger, opts Options) *Controller {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = DefaultMaxAttempts
	}
	if opts.JobTTL <= 0 {
		opts.JobTTL = time.Hour
	}
	if opts.OutputDir == "" {
		opts.OutputDir = "."
	}
	return &Controller{
		client:    client,
		assembler: assembler,
		notifier:  notifier,
		log:       log,
		opts:      opts,
		jobs:      NewStore(opts.JobTTL),
	}
}

// Start anchors job lifetimes to ctx and begins store cleanup.
func (c *Controller) Start(ctx context.Context) {
	runCtx, cancel := context.WithCancel(ctx)
	c.ctx = runCtx
	c.cancel = cancel

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-runCtx.Done():
				return
			case <-ticker.C:
				c.jobs.Cleanup()
			}
		}
	}()
}

// Stop cancels running jobs and pending retry timers, then waits for
// goroutines to drain.
func (c *Controller) Stop() {
	if c.cancel != nil {
		c.cancel()
	}
	c.wg.Wait()
}

func (c *Controller) baseCtx() context.Context {
	if c.ctx != nil {
		return c.ctx
	}
	return context.Background()
}

// StartJob triggers a new export. Validation runs synchronously and
// without any network call; everything after that happens on a
// background goroutine the caller observes through snapshots.
func (c *Controller) StartJob(req Request) (*Job, error) {
	c.mu.Lock()
	if c.active != nil && !c.active.State().Terminal() {
		c.mu.Unlock()
		return nil, ErrExportInFlight
	}
	job := NewJob(req, c.opts.MaxAttempts)
	c.active = job
	c.mu.Unlock()
	c.jobs.Put(job)

	job.setState(StateValidating)
	if err := req.Validate(); err != nil {
		job.fail(err)
		c.log.Warn("export request rejected", "job_id", job.ID, "error", err)
		c.notifier.Notify(c.baseCtx(), Notice{Level: LevelError, Title: "Export Error", Message: userMessage(err)})
		return job, nil
	}

	jobCtx, cancelJob := context.WithCancel(c.baseCtx())
	job.setCancel(cancelJob)
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer cancelJob()
		c.run(jobCtx, job)
	}()
	return job, nil
}

// Job looks up a job by ID.
func (c *Controller) Job(id string) (*Job, error) {
	if job := c.jobs.Get(id); job != nil {
		return job, nil
	}
	return nil, ErrJobNotFound
}

// Dismiss discards a job. A terminal job is removed and the controller
// returns to Idle; a running job has its pending retry timers and fetch
// canceled first, so no notices fire after dismissal.
func (c *Controller) Dismiss(id string) error {
	job := c.jobs.Get(id)
	if job == nil {
		return ErrJobNotFound
	}
	if !job.State().Terminal() {
		job.abort()
		return nil
	}
	c.jobs.Delete(id)
	c.mu.Lock()
	if c.active == job {
		c.active = nil
	}
	c.mu.Unlock()
	return nil
}

func (c *Controller) run(ctx context.Context, job *Job) {
	req := job.Request
	log := c.log.With("job_id", job.ID, "format", req.Format)

	job.setState(StateEstimating)
	est := EstimateSize(req)
	job.setEstimate(est)
	log.Info("size estimated", "raw_bytes", est.RawBytes, "compressed_bytes", est.CompressedBytes)

	orch := &Orchestrator{
		MaxAttempts: c.opts.MaxAttempts,
		Schedule:    c.opts.BackoffSchedule,
		OnAttempt:   func(n, _ int) { job.setAttempt(n) },
		OnRetry: func(attempt, maxAttempts int, err error) {
			log.Warn("export attempt failed, retrying", "next_attempt", attempt, "error", err)
			c.notifier.Notify(ctx, Notice{
				Level:   LevelWarn,
				Title:   "Reintentando",
				Message: fmt.Sprintf("retrying (attempt %d of %d)", attempt, maxAttempts),
			})
		},
	}

	var artifact []byte
	var err error
	if req.Format == FormatCSV {
		artifact, err = c.exportCSV(ctx, orch, job)
	} else {
		artifact, err = c.exportPDF(ctx, orch, job)
	}
	if err != nil {
		c.failJob(ctx, job, err)
		return
	}

	job.setState(StateSaving)
	name, payload, compressed, err := finalizeArtifact(req, artifact)
	if err != nil {
		c.failJob(ctx, job, err)
		return
	}
	if err := os.MkdirAll(c.opts.OutputDir, 0o755); err != nil {
		c.failJob(ctx, job, fmt.Errorf("create output dir: %w", err))
		return
	}
	path := filepath.Join(c.opts.OutputDir, name)
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		c.failJob(ctx, job, fmt.Errorf("save artifact: %w", err))
		return
	}

	// 100 is reported here, exactly once, after the blob is fully
	// assembled and handed to the save step.
	job.complete(name, path)
	log.Info("export completed", "artifact", name, "bytes", len(payload), "compressed", compressed)
	c.notifier.Notify(ctx, Notice{
		Level:   LevelInfo,
		Title:   "Exportación Completa",
		Message: fmt.Sprintf("archivo guardado: %s", name),
	})
}

// exportCSV streams the CSV body through the downloader. Each retry
// attempt issues a fresh request; partially streamed bytes from a failed
// attempt are discarded, not resumed.
func (c *Controller) exportCSV(ctx context.Context, orch *Orchestrator, job *Job) ([]byte, error) {
	var data []byte
	err := orch.Execute(ctx, func(ctx context.Context) error {
		resp, err := c.client.ExportCSV(ctx, job.Request)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		dl := &Downloader{OnProgress: job.setProgress}
		body, err := dl.Download(resp)
		if err != nil {
			return err
		}
		data = body
		return nil
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}

// exportPDF fetches the raw rows under retry, then assembles the
// document. Assembly is synchronous and never retried; only the network
// fetch loops.
func (c *Controller) exportPDF(ctx context.Context, orch *Orchestrator, job *Job) ([]byte, error) {
	var data *report.Data
	err := orch.Execute(ctx, func(ctx context.Context) error {
		d, err := c.client.FetchReportData(ctx, job.Request)
		if err != nil {
			return err
		}
		data = d
		return nil
	})
	if err != nil {
		return nil, err
	}

	job.setState(StateAssembling)
	variant := document.VariantDetail
	if job.Request.Report {
		variant = document.VariantSummary
	}
	res, err := c.assembler.Assemble(ctx, data, document.Options{
		Variant:     variant,
		IncludeTax:  job.Request.IncludeTax,
		ChartWidth:  c.opts.ChartWidth,
		ChartHeight: c.opts.ChartHeight,
	})
	if err != nil {
		return nil, err
	}
	return res.PDF, nil
}

func (c *Controller) failJob(ctx context.Context, job *Job, err error) {
	job.fail(err)
	if errors.Is(err, context.Canceled) {
		// Dismissal mid-flight; the surface is gone, no notice.
		c.log.Info("export canceled", "job_id", job.ID)
		return
	}
	c.log.Error("export failed", "job_id", job.ID, "error", err)
	c.notifier.Notify(ctx, Notice{Level: LevelError, Title: "Export Error", Message: userMessage(err)})
}

// finalizeArtifact applies the compression decision to the actual
// artifact bytes and resolves the final file name. The zip extension is
// used only when compression is both requested and recommended. The
// decision runs on the real byte length, not the advisory SizeEstimate,
// so an estimate that misses the threshold never mislabels the artifact.
func finalizeArtifact(req Request, data []byte) (name string, payload []byte, compressed bool, err error) {
	compressed = req.Compress && ShouldCompress(int64(len(data)), req.Format)
	if !compressed {
		return req.ArtifactName(false), data, false, nil
	}
	entry := req.BaseName() + "." + string(req.Format)
	zipped, err := Archive(entry, data)
	if err != nil {
		return "", nil, false, err
	}
	return req.ArtifactName(true), zipped, true, nil
}
