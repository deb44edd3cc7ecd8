package donations_api

import (
	"context"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/BearBump/FoodBridge/internal/cache/rediscache"
	"github.com/BearBump/FoodBridge/internal/metrics"
	"github.com/BearBump/FoodBridge/internal/services/donations"
	"github.com/BearBump/FoodBridge/internal/tzclock"
)

type RateLimiter interface {
	Allow(ctx context.Context, client string) (rediscache.Verdict, error)
}

type DonationsAPI struct {
	svc       *donations.Service
	metrics   *metrics.Metrics
	formatter tzclock.Formatter
	log       logrus.FieldLogger
	now       func() time.Time

	limiter RateLimiter
}

func New(svc *donations.Service) *DonationsAPI {
	return &DonationsAPI{
		svc:       svc,
		formatter: tzclock.NewFormatter("en-US"),
		log:       logrus.StandardLogger(),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (a *DonationsAPI) WithMetrics(m *metrics.Metrics) *DonationsAPI {
	a.metrics = m
	return a
}

func (a *DonationsAPI) WithLocale(locale string) *DonationsAPI {
	if locale != "" {
		a.formatter = tzclock.NewFormatter(locale)
	}
	return a
}

func (a *DonationsAPI) WithLogger(log logrus.FieldLogger) *DonationsAPI {
	if log != nil {
		a.log = log
	}
	return a
}

// WithRateLimit caps requests per client address. A nil limiter disables it.
func (a *DonationsAPI) WithRateLimit(rl RateLimiter) *DonationsAPI {
	a.limiter = rl
	return a
}

// Register mounts the /v1 routes on r.
func (a *DonationsAPI) Register(r chi.Router) {
	r.Route("/v1", func(r chi.Router) {
		r.Use(middleware.RealIP)
		r.Use(a.rateLimit)

		r.Post("/expiry/suggest", a.suggestExpiry)
		r.Post("/pickup-slots/validate", a.validatePickupSlots)

		r.Get("/donations/{id}", a.getDonation)
		r.Post("/donations/{id}/pickup-slots/validate", a.validateDonationPickupSlots)

		r.Get("/status/phase", a.classifyStatus)

		r.Get("/food-types", a.listFoodTypes)
		r.Get("/food-types/legacy/{code}", a.legacyToCanonical)
		r.Get("/food-types/{type}/legacy", a.canonicalToLegacy)

		r.Get("/time/label", a.timeLabel)
	})
}
