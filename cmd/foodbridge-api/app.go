package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	httpSwagger "github.com/swaggo/http-swagger"

	donationsapi "github.com/BearBump/FoodBridge/internal/api/donations_api"
	"github.com/BearBump/FoodBridge/internal/broker/kafka"
	"github.com/BearBump/FoodBridge/internal/broker/messages"
	"github.com/BearBump/FoodBridge/internal/metrics"
	"github.com/BearBump/FoodBridge/internal/services/donations"
)

type apiOpts struct {
	httpAddr    string
	swaggerPath string

	topic         string
	consumerGroup string

	onListen func(httpAddr string)
}

type apiDeps struct {
	svc      *donations.Service
	api      *donationsapi.DonationsAPI
	metrics  *metrics.Metrics
	consumer kafka.RawConsumer
	log      logrus.FieldLogger
	// ready reports whether backing stores are reachable. Nil means always ready.
	ready func(ctx context.Context) error
}

func runFoodBridgeAPI(ctx context.Context, opts apiOpts, deps apiDeps) error {
	if opts.swaggerPath == "" {
		return fmt.Errorf("swaggerPath env var is required")
	}
	if _, err := os.Stat(opts.swaggerPath); os.IsNotExist(err) {
		return fmt.Errorf("swagger file not found: %s", opts.swaggerPath)
	}

	lis, err := net.Listen("tcp", opts.httpAddr)
	if err != nil {
		return err
	}
	if opts.onListen != nil {
		opts.onListen(lis.Addr().String())
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	httpErr := make(chan error, 1)
	go func() {
		httpErr <- serveHTTP(ctx, lis, newRouter(opts, deps), deps.log)
	}()

	consumerErr := make(chan error, 1)
	go func() {
		consumerErr <- consumeDonationUpdates(ctx, opts, deps)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-httpErr:
		return err
	case err := <-consumerErr:
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return errors.Wrap(err, "donation updates consumer stopped")
	}
}

// consumeDonationUpdates feeds the snapshot projection. Undecodable and
// invalid messages are skipped; any other failure stops the consumer
// uncommitted so the message is redelivered after restart.
func consumeDonationUpdates(ctx context.Context, opts apiOpts, deps apiDeps) error {
	log := deps.log.WithFields(logrus.Fields{"topic": opts.topic, "group": opts.consumerGroup})
	log.Info("kafka consumer started")

	return kafka.ConsumeJSON(ctx, deps.consumer,
		func(ctx context.Context, m messages.DonationUpdated) error {
			err := deps.svc.ApplyDonationUpdate(ctx, m)
			if errors.Is(err, donations.ErrInvalidUpdate) {
				log.WithError(err).Warn("invalid donation update skipped")
				return nil
			}
			return err
		},
		func(pe *kafka.PoisonError) {
			log.WithError(pe).WithField("key", string(pe.Key)).Warn("undecodable donation update skipped")
		},
	)
}

func newRouter(opts apiOpts, deps apiDeps) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(deps.log))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if deps.ready != nil {
			if err := deps.ready(r.Context()); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = fmt.Fprintf(w, `{"status":"not ready","error":%q}`, err.Error())
				return
			}
		}
		_, _ = w.Write([]byte(`{"status":"ready"}`))
	})

	if deps.metrics != nil {
		r.Handle("/metrics", deps.metrics.Handler())
	}

	r.Get("/swagger.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		http.ServeFile(w, r, opts.swaggerPath)
	})
	swaggerURL := "/swagger.json"
	if fi, err := os.Stat(opts.swaggerPath); err == nil {
		swaggerURL = fmt.Sprintf("/swagger.json?v=%d", fi.ModTime().Unix())
	}
	r.Get("/docs/*", httpSwagger.Handler(httpSwagger.URL(swaggerURL)))

	deps.api.Register(r)
	return r
}

func requestLogger(log logrus.FieldLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			log.WithFields(logrus.Fields{
				"method":      r.Method,
				"path":        r.URL.Path,
				"status":      ww.Status(),
				"duration_ms": time.Since(start).Milliseconds(),
				"request_id":  middleware.GetReqID(r.Context()),
			}).Debug("http request")
		})
	}
}

func serveHTTP(ctx context.Context, lis net.Listener, h http.Handler, log logrus.FieldLogger) error {
	srv := &http.Server{Handler: h, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.WithField("addr", lis.Addr().String()).Info("HTTP server listening")
	if err := srv.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return ctx.Err()
}
