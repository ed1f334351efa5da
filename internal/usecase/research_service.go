package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/arbilens/backend/internal/domain"
	"github.com/arbilens/backend/internal/logger"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

const defaultPacingDelay = 500 * time.Millisecond

// Pacer blocks until the next provider call may start
type Pacer interface {
	Wait(ctx context.Context) error
}

// NewPacer spaces consecutive calls at least delay apart. The first call is not delayed.
func NewPacer(delay time.Duration) *rate.Limiter {
	if delay <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(delay), 1)
}

// ResearchServiceConfig holds configuration for the research service
type ResearchServiceConfig struct {
	APIKey      string // used when a run supplies no key of its own
	PacingDelay time.Duration
	MaxSessions int
}

// RunOptions are per-batch settings
type RunOptions struct {
	APIKey string
	Sink   domain.ProgressSink
}

// ResearchService drives batches: cache lookup, fetch, default selection and costing per row
type ResearchService struct {
	cache      domain.OfferCache
	fetcher    *OfferFetcher
	calculator *Calculator
	verifier   domain.CredentialVerifier
	pacer      Pacer
	flight     singleflight.Group
	sessions   *sessionStore
	apiKey     string
	log        *logrus.Entry

	keyMu   sync.Mutex
	lastKey string
}

// NewResearchService creates a new research service with dependencies
func NewResearchService(
	cache domain.OfferCache,
	fetcher *OfferFetcher,
	calculator *Calculator,
	verifier domain.CredentialVerifier,
	config ResearchServiceConfig,
	log logrus.FieldLogger,
) *ResearchService {
	pacing := config.PacingDelay
	if pacing < 0 {
		pacing = defaultPacingDelay
	}
	if calculator == nil {
		calculator = DefaultCalculator()
	}

	return &ResearchService{
		cache:      cache,
		fetcher:    fetcher,
		calculator: calculator,
		verifier:   verifier,
		pacer:      NewPacer(pacing),
		sessions:   newSessionStore(config.MaxSessions),
		apiKey:     config.APIKey,
		log:        logger.WithComponent(log, "research"),
	}
}

// SetPacer replaces the pacing strategy
func (s *ResearchService) SetPacer(p Pacer) {
	s.pacer = p
}

// Calculator returns the cost model used for new sessions
func (s *ResearchService) Calculator() *Calculator {
	return s.calculator
}

// Run processes rows strictly in order and always visits every row unless ctx
// is cancelled, which is only observed between rows. Per-row failures degrade
// to an empty offer set; they never stop the batch.
func (s *ResearchService) Run(ctx context.Context, rows []domain.CatalogRow, opts RunOptions) *Session {
	apiKey := opts.APIKey
	if apiKey == "" {
		apiKey = s.apiKey
	}
	s.rotateKey(apiKey)

	sink := opts.Sink
	if sink == nil {
		sink = noopSink{}
	}

	started := time.Now()
	session := newSession(uuid.NewString(), s.calculator, len(rows))
	s.sessions.add(session)

	log := s.log.WithFields(logrus.Fields{"session": session.ID, "rows": len(rows)})
	log.Info("batch started")

	summary := domain.Summary{SessionID: session.ID, Status: domain.BatchCompleted, Total: len(rows)}

	for i, row := range rows {
		if ctx.Err() != nil {
			summary.Status = domain.BatchCancelled
			break
		}

		result, source, err := s.lookup(ctx, row, apiKey)
		if err != nil {
			summary.Status = domain.BatchCancelled
			break
		}

		// a cached failure is still a degraded row
		failed := result.Status.Failed()
		message := ""
		switch source {
		case sourceCache, sourceShared:
			summary.CacheHits++
			message = fmt.Sprintf("cached lookup (%s)", result.Status)
			result.Status = domain.FetchCached
		case sourceFetched:
			summary.Fetched++
		}
		if result.Err != nil {
			message = result.Err.Error()
		}
		if failed {
			summary.Failures++
		}

		rowResult := session.record(row, result, message)
		if rowResult.Profitable {
			summary.Profitable++
		}
		summary.Processed++

		progress := domain.Progress{Index: i + 1, Total: len(rows)}
		session.setProgress(progress)
		sink.Progress(progress, row)
	}

	summary.Elapsed = time.Since(started)
	summary.Message = fmt.Sprintf("%s: %d/%d rows, %d profitable, %d fetched, %d cached, %d failed",
		summary.Status, summary.Processed, summary.Total, summary.Profitable, summary.Fetched, summary.CacheHits, summary.Failures)
	session.finish(summary)
	sink.Done(summary)

	log.WithFields(logrus.Fields{
		"status":     summary.Status,
		"processed":  summary.Processed,
		"profitable": summary.Profitable,
		"fetched":    summary.Fetched,
		"cache_hits": summary.CacheHits,
		"failures":   summary.Failures,
		"elapsed_ms": summary.Elapsed.Milliseconds(),
	}).Info("batch finished")

	return session
}

type lookupSource int

const (
	sourceCache lookupSource = iota
	sourceFetched
	sourceShared
)

// lookup consults the cache and fetches on a miss. Concurrent lookups for the
// same identifier share one provider call. The only error is cancellation
// while waiting for the pacer.
func (s *ResearchService) lookup(ctx context.Context, row domain.CatalogRow, apiKey string) (domain.FetchResult, lookupSource, error) {
	if entry, ok := s.cache.Get(row.Identifier); ok {
		return domain.FetchResult{Offers: entry.Offers, Status: entry.Status}, sourceCache, nil
	}

	fetched := false
	v, err, shared := s.flight.Do(row.Identifier, func() (interface{}, error) {
		if entry, ok := s.cache.Get(row.Identifier); ok {
			return domain.FetchResult{Offers: entry.Offers, Status: entry.Status}, nil
		}

		query := BuildQuery(row)
		if apiKey != "" && query != "" {
			if err := s.pacer.Wait(ctx); err != nil {
				return nil, err
			}
		}

		result := s.fetcher.Fetch(ctx, query, apiKey)
		fetched = true
		// nothing was asked of the provider, so there is nothing to remember
		if result.Status != domain.FetchMissingCredential {
			s.cache.Put(row.Identifier, result.Offers, result.Status)
		}
		return result, nil
	})
	if err != nil {
		if shared && ctx.Err() == nil {
			// the call we joined belonged to a batch that was cancelled
			return s.lookup(ctx, row, apiKey)
		}
		return domain.FetchResult{}, sourceShared, err
	}

	result := v.(domain.FetchResult)
	switch {
	case fetched:
		return result, sourceFetched, nil
	case shared:
		return result, sourceShared, nil
	default:
		return result, sourceCache, nil
	}
}

// rotateKey clears the cache when the provider key changes; results fetched
// under another account are not reused.
func (s *ResearchService) rotateKey(apiKey string) {
	if apiKey == "" {
		return
	}

	s.keyMu.Lock()
	defer s.keyMu.Unlock()

	if s.lastKey != "" && s.lastKey != apiKey {
		s.log.Info("API key changed, clearing offer cache")
		s.cache.Clear()
	}
	s.lastKey = apiKey
}

// Session returns a previous batch by id
func (s *ResearchService) Session(id string) (*Session, error) {
	session, ok := s.sessions.get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrSessionNotFound, id)
	}
	return session, nil
}

// ClearCache drops every cached lookup
func (s *ResearchService) ClearCache() int {
	n := s.cache.Len()
	s.cache.Clear()
	s.log.WithField("entries", n).Info("offer cache cleared")
	return n
}

// VerifyCredential checks a key against the provider without running a batch
func (s *ResearchService) VerifyCredential(ctx context.Context, apiKey string) error {
	if apiKey == "" {
		return domain.ErrMissingCredential
	}
	if s.verifier == nil {
		return errors.New("credential verification not configured")
	}
	return s.verifier.VerifyKey(ctx, apiKey)
}

type noopSink struct{}

func (noopSink) Progress(domain.Progress, domain.CatalogRow) {}
func (noopSink) Done(domain.Summary)                         {}
