package manager

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"li-responder/internal/config"
	"li-responder/internal/filtering"
	"li-responder/internal/form"
	"li-responder/internal/jobs"
	"li-responder/internal/linkedin"
	"li-responder/internal/utils"
)

const (
	// minimumPagePeriod spreads applications out. Burning through result
	// pages back to back is the fastest way to a restricted account.
	minimumPagePeriod = 15 * time.Minute

	extraPauseEvery = 5
	extraPauseMin   = 5 * time.Second
	extraPauseMax   = 34 * time.Second
)

// Manager runs the outer application loop: sweep every position/location
// pair, page by page, forever.
type Manager struct {
	cfg      *config.Config
	client   *linkedin.Client
	filler   *form.Filler
	outcomes *jobs.OutcomeWriter
	filters  []filtering.Filter
	logger   *zap.Logger
	rand     *rand.Rand

	pagePeriod time.Duration
}

func New(
	cfg *config.Config,
	client *linkedin.Client,
	filler *form.Filler,
	outcomes *jobs.OutcomeWriter,
	filters []filtering.Filter,
	logger *zap.Logger,
) *Manager {
	return &Manager{
		cfg:        cfg,
		client:     client,
		filler:     filler,
		outcomes:   outcomes,
		filters:    filters,
		logger:     logger,
		rand:       rand.New(rand.NewSource(time.Now().UnixNano())),
		pagePeriod: minimumPagePeriod,
	}
}

// Run sweeps until the context is cancelled.
func (m *Manager) Run(ctx context.Context) error {
	for sweep := 1; ; sweep++ {
		m.logger.Info("starting sweep", zap.Int("sweep", sweep))

		pairs := searchPairs(m.cfg.Positions, m.cfg.Locations)
		shufflePairs(m.rand, pairs)

		for _, p := range pairs {
			if err := m.sweepPair(ctx, p); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				m.logger.Error("search pair failed",
					zap.String("position", p.position),
					zap.String("location", p.location),
					zap.Error(err),
				)
			}
		}
	}
}

type pair struct {
	position string
	location string
}

func searchPairs(positions, locations []string) []pair {
	pairs := make([]pair, 0, len(positions)*len(locations))
	for _, position := range positions {
		for _, location := range locations {
			pairs = append(pairs, pair{position: position, location: location})
		}
	}
	return pairs
}

// shufflePairs randomizes sweep order so every run does not hammer the same
// first search.
func shufflePairs(r *rand.Rand, pairs []pair) {
	r.Shuffle(len(pairs), func(i, j int) {
		pairs[i], pairs[j] = pairs[j], pairs[i]
	})
}

func (m *Manager) sweepPair(ctx context.Context, p pair) error {
	m.logger.Info("sweeping search",
		zap.String("position", p.position),
		zap.String("location", p.location),
	)

	for page := 0; ; page++ {
		started := time.Now()

		err := m.processPage(ctx, p, page)
		if errors.Is(err, linkedin.ErrNoMoreJobs) {
			m.logger.Info("search exhausted", zap.Int("pages", page))
			return nil
		}
		if err != nil {
			return err
		}

		if err := utils.WaitFor(ctx, m.pagePause(page, time.Since(started))); err != nil {
			return err
		}
	}
}

func (m *Manager) processPage(ctx context.Context, p pair, page int) error {
	url := linkedin.BuildSearchURL(m.cfg, p.position, p.location, page)
	if err := m.client.OpenSearchPage(ctx, url); err != nil {
		return err
	}

	tiles, err := m.client.CollectTiles(ctx)
	if err != nil {
		return err
	}

	list, err := filtering.Run(ctx, filtering.Deps{Logger: m.logger}, m.filters, tiles)
	if err != nil {
		return err
	}

	for _, job := range list {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		m.applyTo(ctx, job)
	}
	return nil
}

// applyTo runs one application end to end and records its outcome. A single
// failed job never aborts the page.
func (m *Manager) applyTo(ctx context.Context, job *jobs.Job) {
	logger := m.logger.With(zap.String("job", job.String()))

	if err := m.client.LoadDetails(ctx, job); err != nil {
		logger.Warn("could not load job details", zap.Error(err))
		m.record(jobs.OutcomeSkipped, job)
		return
	}

	if err := m.client.StartEasyApply(ctx); err != nil {
		logger.Warn("could not start application", zap.Error(err))
		m.record(jobs.OutcomeSkipped, job)
		return
	}

	if err := m.filler.Apply(ctx, job); err != nil {
		logger.Error("application failed", zap.Error(err))
		if derr := m.client.Discard(ctx); derr != nil {
			logger.Warn("could not discard application", zap.Error(derr))
		}
		m.record(jobs.OutcomeFailed, job)
		return
	}

	if err := m.client.CloseConfirmation(ctx); err != nil {
		logger.Debug("could not close confirmation", zap.Error(err))
	}
	m.record(jobs.OutcomeSuccess, job)
}

func (m *Manager) record(outcome jobs.Outcome, job *jobs.Job) {
	if err := m.outcomes.Record(outcome, job); err != nil {
		m.logger.Error("could not record outcome",
			zap.String("outcome", string(outcome)),
			zap.Error(err),
		)
	}
}

// pagePause computes how long to sleep after a page: whatever is left of the
// minimum page period, plus an extra random pause every fifth page.
func (m *Manager) pagePause(page int, elapsed time.Duration) time.Duration {
	pause := m.pagePeriod - elapsed
	if pause < 0 {
		pause = 0
	}
	if (page+1)%extraPauseEvery == 0 {
		pause += extraPauseMin + time.Duration(m.rand.Int63n(int64(extraPauseMax-extraPauseMin)))
	}
	return pause
}
