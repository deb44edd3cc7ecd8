package sweeper

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/BearBump/FoodBridge/internal/broker/messages"
	"github.com/BearBump/FoodBridge/internal/metrics"
	"github.com/BearBump/FoodBridge/internal/models"
	"github.com/BearBump/FoodBridge/internal/services/status"
	"github.com/BearBump/FoodBridge/internal/tzclock"
)

const (
	DefaultSchedule = "*/5 * * * *"
	// MaxBatchSize matches the largest page the snapshot store returns.
	MaxBatchSize = 1000
)

type Repository interface {
	ListOpenDonations(ctx context.Context, terminal []string, after *models.DonationCursor, limit int) ([]*models.Donation, error)
}

type Publisher interface {
	PublishJSON(ctx context.Context, topic, key string, v any) error
}

// Sweeper periodically scans open donation snapshots and publishes an
// attention event for each one that can no longer be collected as planned.
type Sweeper struct {
	repo      Repository
	publisher Publisher
	topic     string

	log     logrus.FieldLogger
	metrics *metrics.Metrics
	now     func() time.Time

	schedule    string
	batchSize   int
	defaultZone *time.Location

	triggerCh chan struct{}

	// donation id -> reason already published, so a flag is raised once
	// per reason while the donation stays open.
	flaggedMu sync.Mutex
	flagged   map[string]string

	startedAtUnixNano   int64
	lastCycleUnixNano   atomic.Int64
	lastTriggerUnixNano atomic.Int64
	totalScanned        atomic.Int64
	totalFlagged        atomic.Int64
	totalErrors         atomic.Int64
	lastErrorMu         sync.Mutex
	lastError           string
}

func New(repo Repository, publisher Publisher, topic string) *Sweeper {
	return &Sweeper{
		repo:              repo,
		publisher:         publisher,
		topic:             topic,
		log:               logrus.StandardLogger(),
		now:               func() time.Time { return time.Now().UTC() },
		schedule:          DefaultSchedule,
		batchSize:         500,
		defaultZone:       time.UTC,
		triggerCh:         make(chan struct{}, 1),
		flagged:           map[string]string{},
		startedAtUnixNano: time.Now().UTC().UnixNano(),
	}
}

func (s *Sweeper) WithSettings(schedule string, batchSize int, defaultZone *time.Location) *Sweeper {
	if schedule != "" {
		s.schedule = schedule
	}
	if batchSize > 0 {
		s.batchSize = min(batchSize, MaxBatchSize)
	}
	if defaultZone != nil {
		s.defaultZone = defaultZone
	}
	return s
}

func (s *Sweeper) WithLogger(log logrus.FieldLogger) *Sweeper {
	if log != nil {
		s.log = log
	}
	return s
}

func (s *Sweeper) WithMetrics(m *metrics.Metrics) *Sweeper {
	s.metrics = m
	return s
}

// Trigger forces an immediate sweep (best-effort, non-blocking).
func (s *Sweeper) Trigger() {
	s.lastTriggerUnixNano.Store(time.Now().UTC().UnixNano())
	select {
	case s.triggerCh <- struct{}{}:
	default:
	}
}

type Stats struct {
	StartedAt     time.Time  `json:"startedAt"`
	Schedule      string     `json:"schedule"`
	LastCycleAt   *time.Time `json:"lastCycleAt,omitempty"`
	LastTriggerAt *time.Time `json:"lastTriggerAt,omitempty"`
	TotalScanned  int64      `json:"totalScanned"`
	TotalFlagged  int64      `json:"totalFlagged"`
	TotalErrors   int64      `json:"totalErrors"`
	LastError     string     `json:"lastError,omitempty"`
}

func (s *Sweeper) Stats() Stats {
	st := Stats{
		StartedAt:    time.Unix(0, s.startedAtUnixNano).UTC(),
		Schedule:     s.schedule,
		TotalScanned: s.totalScanned.Load(),
		TotalFlagged: s.totalFlagged.Load(),
		TotalErrors:  s.totalErrors.Load(),
	}
	if n := s.lastCycleUnixNano.Load(); n > 0 {
		t := time.Unix(0, n).UTC()
		st.LastCycleAt = &t
	}
	if n := s.lastTriggerUnixNano.Load(); n > 0 {
		t := time.Unix(0, n).UTC()
		st.LastTriggerAt = &t
	}
	s.lastErrorMu.Lock()
	st.LastError = s.lastError
	s.lastErrorMu.Unlock()
	return st
}

// Run sweeps on the cron schedule and on every Trigger until ctx is done.
// Cron ticks are funneled through the trigger channel so sweeps never overlap.
func (s *Sweeper) Run(ctx context.Context) error {
	c := cron.New(cron.WithLocation(time.UTC))
	if _, err := c.AddFunc(s.schedule, func() {
		select {
		case s.triggerCh <- struct{}{}:
		default:
		}
	}); err != nil {
		return errors.Wrapf(err, "parse sweep schedule %q", s.schedule)
	}
	c.Start()
	defer func() { <-c.Stop().Done() }()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.triggerCh:
			s.RunOnce(ctx)
		}
	}
}

// RunOnce performs a single sweep over every open donation, one page of
// batchSize at a time, and returns the number of events published.
func (s *Sweeper) RunOnce(ctx context.Context) int {
	now := s.now()
	s.lastCycleUnixNano.Store(now.UnixNano())
	terminal := status.TerminalStatuses()

	seen := map[string]struct{}{}
	published := 0
	var after *models.DonationCursor
	for {
		if ctx.Err() != nil {
			return published
		}
		page, err := s.repo.ListOpenDonations(ctx, terminal, after, s.batchSize)
		if err != nil {
			s.recordError(err)
			s.log.WithError(err).Error("list open donations")
			return published
		}
		s.totalScanned.Add(int64(len(page)))

		for _, d := range page {
			seen[d.ID] = struct{}{}
			if s.inspect(ctx, d, now) {
				published++
			}
		}

		if len(page) < s.batchSize {
			break
		}
		next := models.CursorAfter(page[len(page)-1])
		if after != nil && next.ID == after.ID && next.UpdatedAt.Equal(after.UpdatedAt) {
			break
		}
		after = next
	}

	// the scan reached the end of the open set
	s.forgetMissing(seen)
	return published
}

// inspect flags d when it needs attention and reports whether an event was
// published.
func (s *Sweeper) inspect(ctx context.Context, d *models.Donation, now time.Time) bool {
	reason, ok := Inspect(d, now, s.zoneOf(d))
	if !ok || s.alreadyFlagged(d.ID, reason) {
		return false
	}

	ev := messages.DonationAttention{
		DonationID: d.ID,
		Reason:     reason,
		Phase:      string(status.Classify(d.Status)),
		DetectedAt: now,
	}
	if err := s.publisher.PublishJSON(ctx, s.topic, d.ID, ev); err != nil {
		s.recordError(err)
		s.log.WithError(err).WithField("donation_id", d.ID).Error("publish donation attention")
		return false
	}
	s.markFlagged(d.ID, reason)
	s.totalFlagged.Add(1)
	s.metrics.ObserveAttention(reason)
	s.log.WithFields(logrus.Fields{"donation_id": d.ID, "reason": reason}).Info("donation needs attention")
	return true
}

func (s *Sweeper) zoneOf(d *models.Donation) *time.Location {
	return tzclock.ResolveZoneOr(d.Zone, s.defaultZone)
}

func (s *Sweeper) alreadyFlagged(id, reason string) bool {
	s.flaggedMu.Lock()
	defer s.flaggedMu.Unlock()
	return s.flagged[id] == reason
}

func (s *Sweeper) markFlagged(id, reason string) {
	s.flaggedMu.Lock()
	s.flagged[id] = reason
	s.flaggedMu.Unlock()
}

// forgetMissing drops flags of donations that left the open set.
func (s *Sweeper) forgetMissing(seen map[string]struct{}) {
	s.flaggedMu.Lock()
	for id := range s.flagged {
		if _, ok := seen[id]; !ok {
			delete(s.flagged, id)
		}
	}
	s.flaggedMu.Unlock()
}

func (s *Sweeper) recordError(err error) {
	s.totalErrors.Add(1)
	s.lastErrorMu.Lock()
	s.lastError = err.Error()
	s.lastErrorMu.Unlock()
}
