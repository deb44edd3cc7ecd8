package donations

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/BearBump/FoodBridge/internal/broker/messages"
	"github.com/BearBump/FoodBridge/internal/cache"
	"github.com/BearBump/FoodBridge/internal/cache/rediscache"
	"github.com/BearBump/FoodBridge/internal/metrics"
	"github.com/BearBump/FoodBridge/internal/models"
	"github.com/BearBump/FoodBridge/internal/services/pickup"
	"github.com/BearBump/FoodBridge/internal/services/status"
	"github.com/BearBump/FoodBridge/internal/tzclock"
)

var (
	ErrNotFound      = errors.New("donation not found")
	ErrInvalidUpdate = errors.New("invalid donation update")
)

type Repository interface {
	UpsertDonation(ctx context.Context, d *models.Donation) (bool, error)
	GetDonation(ctx context.Context, id string) (*models.Donation, error)
}

type Publisher interface {
	PublishJSON(ctx context.Context, topic, key string, v any) error
}

type Service struct {
	repo       Repository
	cache      cache.BytesCache
	currentTTL time.Duration

	publisher  Publisher
	phaseTopic string

	defaultZone *time.Location
	log         logrus.FieldLogger
	metrics     *metrics.Metrics
	now         func() time.Time
}

func New(repo Repository, c cache.BytesCache, currentTTL time.Duration) *Service {
	return &Service{
		repo:        repo,
		cache:       c,
		currentTTL:  currentTTL,
		defaultZone: time.UTC,
		log:         logrus.StandardLogger(),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) WithPublisher(p Publisher, phaseTopic string) *Service {
	s.publisher = p
	s.phaseTopic = phaseTopic
	return s
}

func (s *Service) WithDefaultZone(loc *time.Location) *Service {
	if loc != nil {
		s.defaultZone = loc
	}
	return s
}

func (s *Service) WithLogger(log logrus.FieldLogger) *Service {
	if log != nil {
		s.log = log
	}
	return s
}

func (s *Service) WithMetrics(m *metrics.Metrics) *Service {
	s.metrics = m
	return s
}

func (s *Service) cacheEnabled() bool {
	return s.cache != nil && s.currentTTL > 0
}

// GetDonation returns the latest snapshot, reading through the cache.
func (s *Service) GetDonation(ctx context.Context, id string) (*models.Donation, error) {
	if id == "" {
		return nil, errors.New("donation id is required")
	}

	key := rediscache.DonationKey(id)
	if s.cacheEnabled() {
		b, ok, err := s.cache.Get(ctx, key)
		if err != nil {
			s.log.WithError(err).WithField("donation_id", id).Warn("snapshot cache get")
		}
		if err == nil && ok {
			var d models.Donation
			if json.Unmarshal(b, &d) == nil {
				return &d, nil
			}
		}
	}

	d, err := s.repo.GetDonation(ctx, id)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, errors.Wrapf(ErrNotFound, "donation %s", id)
	}
	s.storeInCache(ctx, d)
	return d, nil
}

func (s *Service) Phase(ctx context.Context, id string) (models.DisplayPhase, error) {
	d, err := s.GetDonation(ctx, id)
	if err != nil {
		return "", err
	}
	return status.Classify(d.Status), nil
}

// ZoneOf is the donor's zone, or the service default when the snapshot has
// none or an unknown one.
func (s *Service) ZoneOf(d *models.Donation) *time.Location {
	if d == nil {
		return s.defaultZone
	}
	return tzclock.ResolveZoneOr(d.Zone, s.defaultZone)
}

func (s *Service) DefaultZone() *time.Location {
	return s.defaultZone
}

// ValidatePickupSlots checks proposed slots against the stored snapshot of a
// donation. A missing donation is rejected as INVALID_TARGET. Rule
// violations are returned as *pickup.Rejection.
func (s *Service) ValidatePickupSlots(ctx context.Context, donationID string, slots []models.PickupSlot, now time.Time) error {
	req := pickup.Request{DonationID: donationID, Slots: slots}
	zone := s.defaultZone

	if donationID != "" {
		d, err := s.GetDonation(ctx, donationID)
		switch {
		case errors.Is(err, ErrNotFound):
			req.DonationID = ""
		case err != nil:
			return err
		default:
			req.ExpiryDate = d.ExpiryDate
			zone = s.ZoneOf(d)
		}
	}

	err := pickup.Validate(req, now, zone)
	result := "ok"
	if r := pickup.ReasonOf(err); r != "" {
		result = string(r)
	}
	s.metrics.ObservePickupValidation(result)
	return err
}

// ApplyDonationUpdate projects an update from the system of record into the
// local snapshot. Updates older than the stored snapshot are ignored. A
// PhaseChanged event is published before the snapshot is written so a failed
// publish leaves the message to be redelivered.
func (s *Service) ApplyDonationUpdate(ctx context.Context, msg messages.DonationUpdated) error {
	if msg.DonationID == "" {
		return errors.Wrap(ErrInvalidUpdate, "donation_id is required")
	}
	if msg.UpdatedAt.IsZero() {
		msg.UpdatedAt = s.now()
	}
	d := snapshotFromMessage(msg)
	log := s.log.WithField("donation_id", d.ID)

	prev, err := s.repo.GetDonation(ctx, d.ID)
	if err != nil {
		return err
	}
	if prev != nil && d.UpdatedAt.Before(prev.UpdatedAt) {
		log.WithField("updated_at", d.UpdatedAt).Debug("stale donation update skipped")
		return nil
	}

	phase := status.Classify(d.Status)
	var prevPhase models.DisplayPhase
	if prev != nil {
		prevPhase = status.Classify(prev.Status)
	}
	if prevPhase != phase && s.publisher != nil && s.phaseTopic != "" {
		ev := messages.PhaseChanged{
			DonationID:    d.ID,
			PreviousPhase: string(prevPhase),
			Phase:         string(phase),
			RawStatus:     d.Status,
			ChangedAt:     d.UpdatedAt,
		}
		if err := s.publisher.PublishJSON(ctx, s.phaseTopic, d.ID, ev); err != nil {
			return errors.Wrap(err, "publish phase changed")
		}
		log.WithFields(logrus.Fields{"from": prevPhase, "to": phase}).Info("donation phase changed")
	}

	applied, err := s.repo.UpsertDonation(ctx, d)
	if err != nil {
		return err
	}
	if !applied {
		log.Debug("donation update lost to a newer snapshot")
		return nil
	}
	s.metrics.ObserveSnapshotUpdate(string(phase))

	if s.cacheEnabled() {
		s.storeInCache(ctx, d)
	}
	return nil
}

func (s *Service) storeInCache(ctx context.Context, d *models.Donation) {
	if !s.cacheEnabled() {
		return
	}
	b, err := json.Marshal(d)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, rediscache.DonationKey(d.ID), b, s.currentTTL); err != nil {
		s.log.WithError(err).WithField("donation_id", d.ID).Warn("snapshot cache set")
	}
}

func snapshotFromMessage(msg messages.DonationUpdated) *models.Donation {
	food := models.FoodType(msg.FoodType)
	if canonical, ok := models.LegacyToCanonicalFoodType(msg.FoodType); ok {
		food = canonical
	}

	d := &models.Donation{
		ID:              msg.DonationID,
		Status:          msg.Status,
		FoodType:        food,
		Temperature:     models.TemperatureCategory(msg.Temperature),
		Packaging:       models.PackagingType(msg.Packaging),
		FabricationDate: msg.FabricationDate,
		ExpiryDate:      msg.ExpiryDate,
		Zone:            msg.Zone,
		UpdatedAt:       msg.UpdatedAt.UTC(),
		PickupSlots:     make([]models.PickupSlot, 0, len(msg.PickupSlots)),
	}
	for _, slot := range msg.PickupSlots {
		d.PickupSlots = append(d.PickupSlots, models.PickupSlot{
			PickupDate: slot.PickupDate,
			StartTime:  slot.StartTime,
			EndTime:    slot.EndTime,
			Notes:      slot.Notes,
		})
	}
	if !tzclock.KnownZone(d.Zone) {
		d.Zone = ""
	}
	return d
}
