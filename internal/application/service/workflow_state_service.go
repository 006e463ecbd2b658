package service

import (
	"regexp"
	"strings"
	"sync"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/YoshitsuguKoike/phasetrack/internal/app"
	"github.com/YoshitsuguKoike/phasetrack/internal/app/config"
	"github.com/YoshitsuguKoike/phasetrack/internal/application/port/output"
	"github.com/YoshitsuguKoike/phasetrack/internal/domain/model/phase"
	"github.com/YoshitsuguKoike/phasetrack/internal/domain/model/workflow"
	domainservice "github.com/YoshitsuguKoike/phasetrack/internal/domain/service"
)

// WorkflowStateProvider derives and memoizes workflow states
type WorkflowStateProvider interface {
	GetState(marker *workflow.Marker) *workflow.State
	Refresh(projectID string, marker *workflow.Marker) *workflow.State
	Invalidate(projectID string) int
	ClearAll()
}

// WorkflowStateService is the single source of truth for derived workflow states.
// States are memoized per project revision; only the latest revision of a project is kept.
type WorkflowStateService struct {
	registry   *phase.Registry
	normalizer *domainservice.PhaseNormalizer
	calculator *domainservice.ProgressCalculator

	progressOpts []domainservice.ProgressOption

	notStartedLabel string
	noTaskLabel     string

	logger  app.Logger
	metrics output.CacheMetrics

	defaultState *workflow.State

	mu    sync.Mutex
	cache map[string]map[workflow.VersionToken]*workflow.State
}

// StateServiceOption customizes a WorkflowStateService
type StateServiceOption func(*WorkflowStateService)

// WithRegistry selects the phase table used by the normalizer and the calculator
func WithRegistry(registry *phase.Registry) StateServiceOption {
	return func(s *WorkflowStateService) {
		if registry != nil {
			s.registry = registry
		}
	}
}

// WithProgressOptions tunes the progress calculator
func WithProgressOptions(opts ...domainservice.ProgressOption) StateServiceOption {
	return func(s *WorkflowStateService) {
		s.progressOpts = append(s.progressOpts, opts...)
	}
}

// WithPlaceholders overrides the section and line item labels used when data is absent
func WithPlaceholders(notStarted, noTask string) StateServiceOption {
	return func(s *WorkflowStateService) {
		if strings.TrimSpace(notStarted) != "" {
			s.notStartedLabel = notStarted
		}
		if strings.TrimSpace(noTask) != "" {
			s.noTaskLabel = noTask
		}
	}
}

// WithLogger sets the logger; the app logger is used otherwise
func WithLogger(logger app.Logger) StateServiceOption {
	return func(s *WorkflowStateService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics sets the cache metrics sink
func WithMetrics(metrics output.CacheMetrics) StateServiceOption {
	return func(s *WorkflowStateService) {
		if metrics != nil {
			s.metrics = metrics
		}
	}
}

// NewWorkflowStateService creates a state service over the default registry
func NewWorkflowStateService(opts ...StateServiceOption) *WorkflowStateService {
	s := &WorkflowStateService{
		registry:        phase.DefaultRegistry(),
		notStartedLabel: config.DefaultNotStartedLabel,
		noTaskLabel:     config.DefaultNoTaskLabel,
		logger:          app.GetLogger(),
		metrics:         output.NopCacheMetrics{},
		cache:           make(map[string]map[workflow.VersionToken]*workflow.State),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.normalizer = domainservice.NewPhaseNormalizer(s.registry)
	s.calculator = domainservice.NewProgressCalculator(s.registry, s.progressOpts...)
	s.defaultState = s.buildDefaultState()
	return s
}

// NewWorkflowStateServiceFromConfig creates a state service tuned by cfg
func NewWorkflowStateServiceFromConfig(cfg config.Config, opts ...StateServiceOption) *WorkflowStateService {
	base := []StateServiceOption{
		WithProgressOptions(
			domainservice.WithPartialCredit(cfg.PartialCredit()),
			domainservice.WithProgressCap(cfg.ProgressCap()),
		),
		WithPlaceholders(cfg.NotStartedLabel(), cfg.NoTaskLabel()),
	}
	return NewWorkflowStateService(append(base, opts...)...)
}

// Registry returns the phase table in use
func (s *WorkflowStateService) Registry() *phase.Registry {
	return s.registry
}

// GetState returns the derived state of marker.
// A nil marker yields the default "not started" state; this method never fails.
func (s *WorkflowStateService) GetState(marker *workflow.Marker) *workflow.State {
	if marker == nil {
		return s.defaultState
	}

	// Without a project identity revisions cannot be told apart, so nothing is cached.
	cacheable := strings.TrimSpace(marker.ProjectID) != ""
	if cacheable {
		s.mu.Lock()
		if state, ok := s.cache[marker.ProjectID][marker.Version]; ok {
			s.mu.Unlock()
			s.metrics.CacheHit()
			return state
		}
		s.mu.Unlock()
	}
	s.metrics.CacheMiss()

	state := s.compute(marker)
	if !cacheable {
		return state
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	versions, ok := s.cache[marker.ProjectID]
	if existing, hit := versions[marker.Version]; hit {
		// computed concurrently by another caller
		return existing
	}
	if ok && len(versions) > 0 {
		s.metrics.CacheEvicted(len(versions))
	}
	s.cache[marker.ProjectID] = map[workflow.VersionToken]*workflow.State{marker.Version: state}
	return state
}

// Refresh replaces whatever is cached for projectID with a state derived from marker
// and returns it. The swap happens under one lock, so no caller can observe the
// superseded entry once Refresh returns. Use it when a marker changed without a
// new version token.
func (s *WorkflowStateService) Refresh(projectID string, marker *workflow.Marker) *workflow.State {
	var state *workflow.State
	if marker == nil {
		state = s.defaultState
	} else {
		s.metrics.CacheMiss()
		state = s.compute(marker)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if n := len(s.cache[projectID]); n > 0 {
		s.metrics.CacheEvicted(n)
	}
	delete(s.cache, projectID)
	if marker != nil && strings.TrimSpace(projectID) != "" && marker.ProjectID == projectID {
		s.cache[projectID] = map[workflow.VersionToken]*workflow.State{marker.Version: state}
	}
	return state
}

// Invalidate drops every cached revision of projectID and returns how many were removed
func (s *WorkflowStateService) Invalidate(projectID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.cache[projectID])
	delete(s.cache, projectID)
	if n > 0 {
		s.metrics.CacheEvicted(n)
	}
	return n
}

// ClearAll drops every cached state
func (s *WorkflowStateService) ClearAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, versions := range s.cache {
		n += len(versions)
	}
	s.cache = make(map[string]map[workflow.VersionToken]*workflow.State)
	if n > 0 {
		s.metrics.CacheEvicted(n)
	}
}

// CachedProjects returns the number of projects with a memoized state
func (s *WorkflowStateService) CachedProjects() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.cache)
}

func (s *WorkflowStateService) compute(marker *workflow.Marker) *workflow.State {
	if warning := marker.Check(); warning != nil {
		s.logger.Warn("%v", warning)
	}

	key, recognized := s.normalizer.Resolve(marker.CurrentPhase)
	if !recognized {
		s.logger.Debug("project %s: unrecognized phase %q, using %s", marker.ProjectID, *marker.CurrentPhase, key)
	}

	var (
		breakdown workflow.Breakdown
		overall   int
	)
	switch {
	case marker.WorkflowComplete:
		if !hasPhase(marker.CurrentPhase) {
			key = s.registry.Last().Key
		}
		breakdown = s.calculator.CompletedBreakdown()
		overall = s.calculator.ComputeOverall(key, true)
	case !hasPhase(marker.CurrentPhase):
		// never entered a phase: nothing is earned yet
		breakdown = s.calculator.NotStartedBreakdown()
	default:
		breakdown = s.calculator.ComputeBreakdown(key)
		overall = s.calculator.ComputeOverall(key, false)
	}

	section, sectionDisplay := s.formatSection(marker.CurrentSection)
	lineItem, lineItemDisplay := s.formatLineItem(marker.CurrentLineItem)

	return workflow.NewState(workflow.StateParams{
		ProjectID:              marker.ProjectID,
		CurrentPhase:           key,
		CurrentPhaseDisplay:    s.registry.DisplayName(key),
		CurrentSection:         section,
		CurrentSectionDisplay:  sectionDisplay,
		CurrentLineItem:        lineItem,
		CurrentLineItemDisplay: lineItemDisplay,
		OverallProgress:        overall,
		Breakdown:              breakdown,
		WorkflowComplete:       marker.WorkflowComplete,
		CacheKey:               marker.CacheKey(),
	})
}

func (s *WorkflowStateService) buildDefaultState() *workflow.State {
	start := s.registry.First().Key
	return workflow.NewState(workflow.StateParams{
		CurrentPhase:           start,
		CurrentPhaseDisplay:    s.registry.DisplayName(start),
		CurrentSectionDisplay:  s.notStartedLabel,
		CurrentLineItemDisplay: s.noTaskLabel,
		OverallProgress:        0,
		Breakdown:              s.calculator.NotStartedBreakdown(),
	})
}

func hasPhase(raw *string) bool {
	return raw != nil && strings.TrimSpace(*raw) != ""
}

func (s *WorkflowStateService) formatSection(raw *string) (string, string) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return "", s.notStartedLabel
	}
	value := strings.TrimSpace(*raw)
	return value, titleCase(value)
}

func (s *WorkflowStateService) formatLineItem(raw *workflow.LineItemRef) (string, string) {
	if raw.IsZero() {
		return "", s.noTaskLabel
	}
	value := strings.TrimSpace(raw.ID)
	if value == "" {
		value = raw.Label()
	}
	return value, titleCase(raw.Label())
}

var wordSeparators = regexp.MustCompile(`[\s_]+`)

// titleCase turns raw tokens such as "roof_tear_off" into "Roof Tear Off"
func titleCase(raw string) string {
	s := wordSeparators.ReplaceAllString(strings.TrimSpace(raw), " ")
	// Casers are stateful and must not be shared between goroutines.
	return cases.Title(language.English).String(s)
}
