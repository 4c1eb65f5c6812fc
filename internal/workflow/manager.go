package workflow

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"switchboard/internal/config"
	"switchboard/internal/notifications"
	"switchboard/internal/queue"
	"switchboard/internal/stage"
)

// Manager coordinates queue processing using registered stage handlers.
type Manager struct {
	cfg          *config.Config
	store        *queue.Store
	logger       *slog.Logger
	notifier     notifications.Service
	pollInterval time.Duration

	heartbeat *HeartbeatMonitor

	stages             []pipelineStage
	statusOrder        []queue.Status
	stageByStart       map[queue.Status]pipelineStage
	processingStatuses []queue.Status

	mu      sync.RWMutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	lastErr error
}

// StageSet bundles the concrete workflow handlers the manager orchestrates.
type StageSet struct {
	Recorder    stage.Handler
	Scrubber    stage.Handler
	Analyzer    stage.Handler
	CostTracker stage.Handler
	Notifier    stage.Handler
}

type pipelineStage struct {
	name             string
	handler          stage.Handler
	startStatus      queue.Status
	processingStatus queue.Status
	doneStatus       queue.Status
}

// loggerAware lets the manager hand stage handlers a request-scoped logger.
type loggerAware interface {
	SetLogger(*slog.Logger)
}

// NewManager constructs a workflow manager with default dependencies.
func NewManager(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Manager {
	return NewManagerWithNotifier(cfg, store, logger, notifications.NewService(cfg))
}

// NewManagerWithNotifier constructs a workflow manager with a custom notifier
// (used in tests).
func NewManagerWithNotifier(cfg *config.Config, store *queue.Store, logger *slog.Logger, notifier notifications.Service) *Manager {
	return &Manager{
		cfg:          cfg,
		store:        store,
		logger:       logger,
		notifier:     notifier,
		pollInterval: time.Duration(cfg.Workflow.QueuePollInterval) * time.Second,
		heartbeat: NewHeartbeatMonitor(
			store,
			logger,
			time.Duration(cfg.Workflow.HeartbeatInterval)*time.Second,
			time.Duration(cfg.Workflow.HeartbeatTimeout)*time.Second,
		),
	}
}

// ConfigureStages registers the pipeline stages in execution order.
func (m *Manager) ConfigureStages(set StageSet) {
	m.stages = []pipelineStage{
		{
			name:             "callrecord",
			handler:          set.Recorder,
			startStatus:      queue.StatusPending,
			processingStatus: queue.StatusRecording,
			doneStatus:       queue.StatusRecorded,
		},
		{
			name:             "scrub",
			handler:          set.Scrubber,
			startStatus:      queue.StatusRecorded,
			processingStatus: queue.StatusScrubbing,
			doneStatus:       queue.StatusScrubbed,
		},
		{
			name:             "analysis",
			handler:          set.Analyzer,
			startStatus:      queue.StatusScrubbed,
			processingStatus: queue.StatusAnalyzing,
			doneStatus:       queue.StatusAnalyzed,
		},
		{
			name:             "costtrack",
			handler:          set.CostTracker,
			startStatus:      queue.StatusAnalyzed,
			processingStatus: queue.StatusCosting,
			doneStatus:       queue.StatusCosted,
		},
		{
			name:             "notify",
			handler:          set.Notifier,
			startStatus:      queue.StatusCosted,
			processingStatus: queue.StatusNotifying,
			doneStatus:       queue.StatusCompleted,
		},
	}

	m.stageByStart = make(map[queue.Status]pipelineStage, len(m.stages))
	m.statusOrder = m.statusOrder[:0]
	m.processingStatuses = m.processingStatuses[:0]
	for _, stg := range m.stages {
		m.stageByStart[stg.startStatus] = stg
		m.statusOrder = append(m.statusOrder, stg.startStatus)
		m.processingStatuses = append(m.processingStatuses, stg.processingStatus)
	}
}

func (m *Manager) stageForStatus(status queue.Status) (pipelineStage, bool) {
	stg, ok := m.stageByStart[status]
	return stg, ok
}

// LastError reports the most recent processing error, if any.
func (m *Manager) LastError() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastErr
}

func (m *Manager) setLastError(err error) {
	m.mu.Lock()
	m.lastErr = err
	m.mu.Unlock()
}

// HealthChecks runs every registered stage health check.
func (m *Manager) HealthChecks(ctx context.Context) []stage.Health {
	checks := make([]stage.Health, 0, len(m.stages))
	for _, stg := range m.stages {
		if stg.handler == nil {
			checks = append(checks, stage.Unhealthy(stg.name, "handler not configured"))
			continue
		}
		checks = append(checks, stg.handler.HealthCheck(ctx))
	}
	return checks
}
