package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/scoutlab/vexscout/internal/engine"
	"github.com/scoutlab/vexscout/internal/models"
	"github.com/scoutlab/vexscout/pkg/utils"
)

// SnapshotFetcher produces the raw event snapshot an analysis runs over. A
// nil snapshot with a nil error means the SKU does not exist.
type SnapshotFetcher interface {
	FetchSnapshot(ctx context.Context, sku string) (*models.Snapshot, error)
}

// Progress is the externally visible state of a running analysis.
type Progress struct {
	Status  string `json:"status"` // idle, running, done, error
	Step    string `json:"step"`
	Percent int    `json:"percent"`
	Detail  string `json:"detail"`
}

// AnalysisService runs analyses over events: fetches the snapshot, attaches
// the override layer, hands everything to the engine and caches the result.
// Progress per event is tracked so a UI can poll while a run is in flight.
type AnalysisService struct {
	fetcher   SnapshotFetcher
	cache     Cache
	overrides OverrideStore
	analyzer  *engine.Analyzer
	logger    *logrus.Logger
	cacheTTL  time.Duration

	mu       sync.Mutex
	progress map[string]Progress
}

func NewAnalysisService(
	fetcher SnapshotFetcher,
	cache Cache,
	overrides OverrideStore,
	analyzer *engine.Analyzer,
	logger *logrus.Logger,
	cacheTTL time.Duration,
) *AnalysisService {
	return &AnalysisService{
		fetcher:   fetcher,
		cache:     cache,
		overrides: overrides,
		analyzer:  analyzer,
		logger:    logger,
		cacheTTL:  cacheTTL,
		progress:  make(map[string]Progress),
	}
}

// Analyze produces the full analysis for one event. Cached results are
// served unless force is set. A self team that is not at the event is a
// partial failure: the analysis is returned together with the engine's
// ErrTeamNotFound so the caller can surface both.
func (s *AnalysisService) Analyze(ctx context.Context, sku, myTeam string, force bool) (*models.Analysis, error) {
	sku = strings.ToUpper(strings.TrimSpace(sku))
	myTeam = strings.TrimSpace(myTeam)
	if sku == "" {
		return nil, fmt.Errorf("%w: event sku required", utils.ErrInvalidInput)
	}

	if !force && s.cache != nil {
		var cached models.Analysis
		if err := s.cache.Get(ctx, AnalysisCacheKey(sku, myTeam), &cached); err == nil {
			s.logger.WithField("event", sku).Debug("Analysis served from cache")
			return &cached, nil
		}
	}

	s.setProgress(sku, Progress{Status: "running", Step: "Finding event...", Percent: 5, Detail: sku})

	// The raw snapshot is cached separately from the analysis so switching
	// the self team does not refetch the whole event.
	var snapshot *models.Snapshot
	if !force && s.cache != nil {
		var cached models.Snapshot
		if err := s.cache.Get(ctx, SnapshotCacheKey(sku), &cached); err == nil {
			snapshot = &cached
		}
	}
	if snapshot == nil {
		fetched, err := s.fetcher.FetchSnapshot(ctx, sku)
		if err != nil {
			s.setProgress(sku, Progress{Status: "error", Step: "Fetch failed", Detail: err.Error()})
			return nil, fmt.Errorf("fetch snapshot: %w", err)
		}
		if fetched == nil {
			s.setProgress(sku, Progress{Status: "error", Step: "Event not found", Detail: sku})
			return nil, fmt.Errorf("%w: %s", utils.ErrEventNotFound, sku)
		}
		snapshot = fetched
		if s.cache != nil {
			if err := s.cache.Set(ctx, SnapshotCacheKey(sku), snapshot, s.cacheTTL); err != nil {
				s.logger.WithError(err).Warn("Failed to cache snapshot")
			}
		}
	}

	s.setProgress(sku, Progress{Status: "running", Step: "Loading overrides...", Percent: 60, Detail: snapshot.EventName})
	overrides, err := s.overrides.Snapshot(ctx, sku)
	if err != nil {
		// Overrides failing to load should not kill the analysis.
		s.logger.WithError(err).Warn("Override store unavailable, running without overrides")
		overrides = models.OverrideSnapshot{}
	}
	snapshot.Overrides = overrides

	s.setProgress(sku, Progress{Status: "running", Step: "Analyzing...", Percent: 75, Detail: snapshot.EventName})

	analysis, analyzeErr := s.analyzer.Analyze(*snapshot, myTeam)
	if analysis == nil {
		s.setProgress(sku, Progress{Status: "error", Step: "Analysis failed", Detail: analyzeErr.Error()})
		return nil, analyzeErr
	}

	// A partial failure (self team unknown) is never cached: a cache hit
	// would replay the analysis as a clean success and drop the warning.
	if s.cache != nil && analyzeErr == nil {
		if err := s.cache.Set(ctx, AnalysisCacheKey(sku, myTeam), analysis, s.cacheTTL); err != nil {
			s.logger.WithError(err).Warn("Failed to cache analysis")
		}
		s.trackEvent(ctx, sku, myTeam)
	}

	s.setProgress(sku, Progress{Status: "done", Step: "Complete", Percent: 100, Detail: snapshot.EventName})
	return analysis, analyzeErr
}

// Refresh drops the cached analysis and runs a fresh one.
func (s *AnalysisService) Refresh(ctx context.Context, sku, myTeam string) (*models.Analysis, error) {
	sku = strings.ToUpper(strings.TrimSpace(sku))
	if s.cache != nil {
		// Evict up front so a failed refetch does not leave stale results
		// being served as fresh.
		if err := s.cache.Delete(ctx, SnapshotCacheKey(sku), AnalysisCacheKey(sku, myTeam)); err != nil {
			s.logger.WithError(err).Warn("Failed to evict cached analysis")
		}
	}
	return s.Analyze(ctx, sku, myTeam, true)
}

// Progress reports the state of the most recent run for an event.
func (s *AnalysisService) Progress(sku string) Progress {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.progress[strings.ToUpper(strings.TrimSpace(sku))]
	if !ok {
		return Progress{Status: "idle"}
	}
	return p
}

func (s *AnalysisService) setProgress(sku string, p Progress) {
	s.mu.Lock()
	s.progress[sku] = p
	s.mu.Unlock()
}

// TrackedEvent is one analysis the refresher keeps warm.
type TrackedEvent struct {
	SKU    string `json:"sku"`
	MyTeam string `json:"my_team"`
}

// trackEvent records the event so the background refresher re-analyzes it.
func (s *AnalysisService) trackEvent(ctx context.Context, sku, myTeam string) {
	events, _ := s.TrackedEvents(ctx)
	for _, e := range events {
		if e.SKU == sku && strings.EqualFold(e.MyTeam, myTeam) {
			return
		}
	}
	events = append(events, TrackedEvent{SKU: sku, MyTeam: myTeam})
	if err := s.cache.Set(ctx, TrackedEventsKey(), events, 0); err != nil {
		s.logger.WithError(err).Warn("Failed to track event for refresh")
	}
}

// TrackedEvents lists the analyses the refresher keeps warm.
func (s *AnalysisService) TrackedEvents(ctx context.Context) ([]TrackedEvent, error) {
	if s.cache == nil {
		return nil, nil
	}
	var events []TrackedEvent
	if err := s.cache.Get(ctx, TrackedEventsKey(), &events); err != nil {
		return nil, nil
	}
	return events, nil
}
