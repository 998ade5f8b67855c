package indexer

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"video-inventory/internal/database"
	"video-inventory/internal/fingerprint"
	"video-inventory/internal/logging"
	"video-inventory/internal/probe"
	"video-inventory/internal/progress"
	"video-inventory/internal/workers"
)

const (
	// DefaultItemTimeout bounds the work on a single file in one phase.
	DefaultItemTimeout = 30 * time.Second

	// Items completed before the server reports ready during the first scan.
	minItemsForReady = 100
)

var (
	// ErrInvalidRoot means the scan root does not exist or is not a directory.
	ErrInvalidRoot = errors.New("invalid scan root")
	// ErrNoVideoFiles means the walk found no video files under the root.
	ErrNoVideoFiles = errors.New("no video files found")
	// ErrScanInProgress means another scan is already running.
	ErrScanInProgress = errors.New("scan already in progress")
	// ErrStopped means Stop has been called and no new scan may start.
	ErrStopped = errors.New("indexer stopped")
)

// Store is the subset of the record store the scanner uses.
type Store interface {
	GetFileByPath(ctx context.Context, path string) (*database.FileRecord, error)
	Upsert(ctx context.Context, u database.FileUpsert) error
	SetLastScan(ctx context.Context, root string, at time.Time) error
	Path() string
}

// Config controls the scanner.
type Config struct {
	// Root is scanned by Start and by periodic re-scans.
	Root string
	// Workers per phase; 0 picks a default from the CPU count.
	Workers int
	// ItemTimeout bounds each file in each phase; 0 uses DefaultItemTimeout.
	ItemTimeout time.Duration
	// SampleBytes for fingerprinting; 0 uses fingerprint.DefaultSampleBytes.
	SampleBytes int64
	// Interval between periodic re-scans; 0 disables them.
	Interval time.Duration
}

// Indexer runs scans and owns the progress sink they report to.
type Indexer struct {
	store       Store
	extractor   probe.Extractor
	sink        *progress.Sink
	fingerprint func(ctx context.Context, path string, sampleBytes int64) (string, error)

	root        string
	workers     int
	itemTimeout time.Duration
	sampleBytes int64
	interval    time.Duration

	stopChan chan struct{}
	stopOnce sync.Once

	scanMu              sync.Mutex
	scanWG              sync.WaitGroup
	stopped             bool
	isScanning          bool
	cancelScan          context.CancelFunc
	lastScanTime        time.Time
	lastSummary         *Summary
	initialScanComplete bool
	initialScanError    error
	startTime           time.Time

	// Progress tracking
	itemsDone  atomic.Int64
	progressMu sync.RWMutex
	progress   Progress
}

// Progress describes the scan currently running.
type Progress struct {
	RunID      string          `json:"runId,omitempty"`
	Root       string          `json:"root,omitempty"`
	IsScanning bool            `json:"isScanning"`
	Phase      progress.Phase  `json:"phase,omitempty"`
	Total      int             `json:"total"`
	Counts     progress.Counts `json:"counts"`
	StartedAt  time.Time       `json:"startedAt,omitempty"`
}

// New creates an Indexer. A nil sink gets an unbounded one.
func New(store Store, extractor probe.Extractor, sink *progress.Sink, cfg Config) *Indexer {
	if sink == nil {
		sink = progress.NewSink(0)
	}
	if cfg.ItemTimeout <= 0 {
		cfg.ItemTimeout = DefaultItemTimeout
	}
	if cfg.SampleBytes <= 0 {
		cfg.SampleBytes = fingerprint.DefaultSampleBytes
	}

	return &Indexer{
		store:       store,
		extractor:   extractor,
		sink:        sink,
		fingerprint: fingerprint.Compute,
		root:        cfg.Root,
		workers:     workers.ForScan(cfg.Workers),
		itemTimeout: cfg.ItemTimeout,
		sampleBytes: cfg.SampleBytes,
		interval:    cfg.Interval,
		stopChan:    make(chan struct{}),
		startTime:   time.Now(),
	}
}

// Sink returns the progress sink scans report to.
func (idx *Indexer) Sink() *progress.Sink {
	return idx.sink
}

// Workers returns the per-phase pool width.
func (idx *Indexer) Workers() int {
	return idx.workers
}

// Start runs the initial scan of the configured root in the background and
// schedules periodic re-scans.
func (idx *Indexer) Start() error {
	if idx.root == "" {
		logging.Info("No scan root configured, waiting for scan requests")
		idx.scanMu.Lock()
		idx.initialScanComplete = true
		idx.scanMu.Unlock()
		return nil
	}

	go func() {
		logging.Info("Starting initial scan of %s in background...", idx.root)
		if _, err := idx.Scan(context.Background(), idx.root); err != nil {
			logging.Error("Initial scan error: %v", err)
			idx.scanMu.Lock()
			idx.initialScanError = err
			idx.initialScanComplete = true
			idx.scanMu.Unlock()
		}
	}()

	if idx.interval > 0 {
		go idx.periodicScan()
	}

	return nil
}

// Stop aborts any running scan, ends periodic re-scans and waits for the
// scan to return. In-flight items finish or hit the item timeout first, so
// the store may be closed once Stop returns.
func (idx *Indexer) Stop() {
	idx.scanMu.Lock()
	idx.stopped = true
	idx.scanMu.Unlock()

	idx.stopOnce.Do(func() {
		close(idx.stopChan)
	})
	idx.CancelScan()
	idx.scanWG.Wait()
}

// CancelScan aborts the running scan, if any. It reports whether a scan was
// running.
func (idx *Indexer) CancelScan() bool {
	idx.scanMu.Lock()
	defer idx.scanMu.Unlock()

	if idx.cancelScan == nil {
		return false
	}
	idx.cancelScan()
	return true
}

func (idx *Indexer) periodicScan() {
	ticker := time.NewTicker(idx.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			logging.Debug("Periodic re-scan triggered")
			if _, err := idx.Scan(context.Background(), idx.root); err != nil && !errors.Is(err, ErrScanInProgress) && !errors.Is(err, ErrStopped) {
				logging.Error("periodic re-scan failed: %v", err)
			}
		case <-idx.stopChan:
			return
		}
	}
}

// TriggerScan validates root and starts a scan in the background. An empty
// root means the configured one.
func (idx *Indexer) TriggerScan(root string) (string, error) {
	if root == "" {
		root = idx.root
	}
	abs, err := validateRoot(root)
	if err != nil {
		return "", err
	}

	ctx, err := idx.tryStartScan(context.Background())
	if err != nil {
		return "", err
	}

	go func() {
		defer idx.finishScan()
		if _, err := idx.runScan(ctx, abs); err != nil {
			logging.Error("manually triggered scan failed: %v", err)
		}
	}()

	return abs, nil
}

// tryStartScan marks a scan as running and returns its cancelable context.
// It fails with ErrScanInProgress or ErrStopped. Every successful call must
// be paired with finishScan.
func (idx *Indexer) tryStartScan(parent context.Context) (context.Context, error) {
	idx.scanMu.Lock()
	defer idx.scanMu.Unlock()

	if idx.stopped {
		return nil, ErrStopped
	}
	if idx.isScanning {
		return nil, ErrScanInProgress
	}

	ctx, cancel := context.WithCancel(parent)
	idx.isScanning = true
	idx.cancelScan = cancel
	idx.scanWG.Add(1)

	go func() {
		select {
		case <-idx.stopChan:
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, nil
}

// finishScan marks scanning as complete.
func (idx *Indexer) finishScan() {
	defer idx.scanWG.Done()

	idx.scanMu.Lock()
	defer idx.scanMu.Unlock()

	if idx.cancelScan != nil {
		idx.cancelScan()
		idx.cancelScan = nil
	}
	idx.isScanning = false
	idx.initialScanComplete = true
}

// IsScanning returns whether a scan is currently in progress.
func (idx *Indexer) IsScanning() bool {
	idx.scanMu.Lock()
	defer idx.scanMu.Unlock()
	return idx.isScanning
}

// LastScanTime returns the completion time of the last scan.
func (idx *Indexer) LastScanTime() time.Time {
	idx.scanMu.Lock()
	defer idx.scanMu.Unlock()
	return idx.lastScanTime
}

// LastSummary returns the summary of the last finished scan, or nil.
func (idx *Indexer) LastSummary() *Summary {
	idx.scanMu.Lock()
	defer idx.scanMu.Unlock()
	if idx.lastSummary == nil {
		return nil
	}
	s := *idx.lastSummary
	return &s
}

// IsReady returns true once the initial scan has finished or enough files
// have been handled to serve useful results.
func (idx *Indexer) IsReady() bool {
	if idx.itemsDone.Load() >= minItemsForReady {
		return true
	}

	idx.scanMu.Lock()
	defer idx.scanMu.Unlock()
	return idx.initialScanComplete
}

// GetProgress returns the current scan progress.
func (idx *Indexer) GetProgress() Progress {
	idx.progressMu.RLock()
	defer idx.progressMu.RUnlock()
	return idx.progress
}

func (idx *Indexer) resetProgress(run *runState) {
	idx.itemsDone.Store(0)
	idx.progressMu.Lock()
	idx.progress = Progress{
		RunID:      run.id,
		Root:       run.root,
		IsScanning: true,
		StartedAt:  run.startedAt,
	}
	idx.progressMu.Unlock()
}

func (idx *Indexer) beginPhase(phase progress.Phase, total int) {
	idx.progressMu.Lock()
	idx.progress.Phase = phase
	idx.progress.Total = total
	idx.progress.Counts = progress.Counts{}
	idx.progressMu.Unlock()
}

func (idx *Indexer) recordItem(outcome progress.Outcome) {
	idx.itemsDone.Add(1)
	idx.progressMu.Lock()
	idx.progress.Counts.Add(outcome)
	idx.progressMu.Unlock()
}

func (idx *Indexer) endProgress() {
	idx.progressMu.Lock()
	idx.progress.IsScanning = false
	idx.progressMu.Unlock()
}

// GetHealthStatus returns detailed health information.
func (idx *Indexer) GetHealthStatus() HealthStatus {
	idx.scanMu.Lock()
	defer idx.scanMu.Unlock()

	status := HealthStatus{
		Ready:       idx.initialScanComplete || idx.itemsDone.Load() >= minItemsForReady,
		Scanning:    idx.isScanning,
		StartTime:   idx.startTime,
		Uptime:      time.Since(idx.startTime).String(),
		LastScanned: idx.lastScanTime,
		Workers:     idx.workers,
	}

	if idx.isScanning {
		p := idx.GetProgress()
		status.ScanProgress = &p
	}
	if idx.lastSummary != nil {
		s := *idx.lastSummary
		status.LastSummary = &s
	}
	if idx.initialScanError != nil {
		status.InitialScanError = idx.initialScanError.Error()
	}

	return status
}

// HealthStatus contains health check information.
type HealthStatus struct {
	Ready            bool      `json:"ready"`
	Scanning         bool      `json:"scanning"`
	StartTime        time.Time `json:"startTime"`
	Uptime           string    `json:"uptime"`
	LastScanned      time.Time `json:"lastScanned,omitempty"`
	InitialScanError string    `json:"initialScanError,omitempty"`
	Workers          int       `json:"workers"`
	ScanProgress     *Progress `json:"scanProgress,omitempty"`
	LastSummary      *Summary  `json:"lastSummary,omitempty"`
}
