// Package app wires the scheduling engine, notifier, booking service and
// observability sinks into a runnable service.
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	apischedule "github.com/fleetops-io/servicesched/api/schedule"
	"github.com/fleetops-io/servicesched/config"
	"github.com/fleetops-io/servicesched/core/booking"
	"github.com/fleetops-io/servicesched/core/engine"
	corefleet "github.com/fleetops-io/servicesched/core/fleet"
	coremetrics "github.com/fleetops-io/servicesched/core/metrics"
	"github.com/fleetops-io/servicesched/core/model"
	"github.com/fleetops-io/servicesched/core/monitoring"
	"github.com/fleetops-io/servicesched/core/notify"
	"github.com/fleetops-io/servicesched/core/push"
	infrafleet "github.com/fleetops-io/servicesched/infra/fleet"
	"github.com/fleetops-io/servicesched/infra/logger"
	"github.com/fleetops-io/servicesched/infra/metrics"
	inframon "github.com/fleetops-io/servicesched/infra/monitoring"
	inframqtt "github.com/fleetops-io/servicesched/infra/mqtt"
	"github.com/fleetops-io/servicesched/infra/store"
	"github.com/fleetops-io/servicesched/internal/eventbus"
)

// Service orchestrates the periodic engine pass, notification delivery and
// the HTTP API.
type Service struct {
	cfg       *config.Config
	src       corefleet.Source
	resources booking.ResourceStore
	services  booking.ServiceStore
	sqlite    *store.SQLiteStore
	Booking   *booking.Service
	gen       *notify.Generator
	publisher push.Publisher
	sink      coremetrics.MetricsSink
	bus       *eventbus.Bus[model.ServiceNotification]
	registry  *notificationRegistry
	log       logger.Logger
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.New("service")

	mon, err := inframon.NewSentryMonitor(cfg.Sentry)
	if err != nil {
		return nil, fmt.Errorf("sentry: %w", err)
	}
	monitoring.Init(mon)

	var sinks []coremetrics.MetricsSink
	if cfg.Metrics.PrometheusEnabled {
		sink, err := metrics.NewPromSink()
		if err != nil {
			return nil, fmt.Errorf("prom sink: %w", err)
		}
		sinks = append(sinks, sink)
	}
	if cfg.Metrics.InfluxEnabled {
		sinks = append(sinks, metrics.NewInfluxSinkWithFallback(
			cfg.Metrics.InfluxURL, cfg.Metrics.InfluxToken, cfg.Metrics.InfluxOrg, cfg.Metrics.InfluxBucket))
	}
	var sink coremetrics.MetricsSink = coremetrics.NopSink{}
	if len(sinks) == 1 {
		sink = sinks[0]
	} else if len(sinks) > 1 {
		sink = metrics.NewMultiSink(sinks...)
	}

	svc := &Service{
		cfg:      cfg,
		src:      infrafleet.NewFileSource(cfg.Fleet.File),
		sink:     sink,
		bus:      eventbus.New[model.ServiceNotification](),
		registry: newNotificationRegistry(),
		log:      logg,
	}

	switch cfg.Store.Backend {
	case "sqlite":
		db, err := store.NewSQLiteStore(cfg.Store.Path)
		if err != nil {
			return nil, fmt.Errorf("sqlite store: %w", err)
		}
		svc.sqlite = db
		svc.resources = db.Resources()
		svc.services = db.Services()
	default:
		svc.resources = booking.NewMemoryResourceStore()
		svc.services = booking.NewMemoryServiceStore()
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for _, r := range cfg.Fleet.Resources {
		if r.Status == "" {
			r.Status = model.ResourceAvailable
		}
		if err := svc.resources.Put(ctx, r); err != nil {
			return nil, fmt.Errorf("seed resource %s: %w", r.ID, err)
		}
	}

	svc.Booking = booking.New(svc.resources, svc.services, logger.New("booking"), sink, cfg.Booking.CancellationWindowHours)
	svc.gen = notify.NewGenerator(cfg.Pricing, cfg.Engine.Thresholds, logger.New("notifier"))

	svc.publisher = push.NopPublisher{}
	if cfg.MQTT.Enabled {
		pub, err := inframqtt.NewPahoPublisher(cfg.MQTT)
		if err != nil {
			return nil, fmt.Errorf("mqtt publisher: %w", err)
		}
		svc.publisher = pub
	}
	return svc, nil
}

// Run starts the scheduling loop and the HTTP servers, blocking until the
// context is cancelled.
func (s *Service) Run(ctx context.Context) error {
	go s.deliverNotifications(ctx)

	if s.cfg.Metrics.PrometheusEnabled {
		go func() {
			defer monitoring.Recover()
			if err := metrics.StartPromServer(ctx, s.cfg.Metrics.PrometheusPort); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}
	go func() {
		defer monitoring.Recover()
		if err := s.serveAPI(ctx); err != nil {
			s.log.Errorf("api server: %v", err)
		}
	}()

	interval := time.Duration(s.cfg.Engine.IntervalSeconds) * time.Second
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.pass(ctx, time.Now())
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			s.pass(ctx, now)
		}
	}
}

// pass runs one full engine cycle: snapshot, rank, bundle, gate, notify.
func (s *Service) pass(ctx context.Context, now time.Time) {
	start := time.Now()
	vehicles, err := s.src.Vehicles(ctx)
	if err != nil {
		s.log.Errorf("load fleet: %v", err)
		monitoring.CaptureException(err, map[string]string{"stage": "load_fleet"})
		return
	}
	resources, err := s.resources.List(ctx, "")
	if err != nil {
		s.log.Errorf("load resources: %v", err)
		monitoring.CaptureException(err, map[string]string{"stage": "load_resources"})
		return
	}

	thresholds := s.cfg.Engine.Thresholds
	queue := engine.GeneratePriorityQueue(vehicles, thresholds, s.cfg.Pricing, now)
	bundles := engine.GenerateBundles(queue, thresholds)
	bundleByVehicle := make(map[string]*engine.BundledServiceRecommendation, len(bundles))
	for i := range bundles {
		bundleByVehicle[bundles[i].VehicleID] = &bundles[i]
	}
	vehicleByID := make(map[string]model.Vehicle, len(vehicles))
	for _, v := range vehicles {
		vehicleByID[v.ID] = v
	}

	notified := 0
	seen := make(map[string]bool, len(vehicles))
	for _, need := range queue {
		// One notification per vehicle per pass; the bundle carries the rest.
		if seen[need.VehicleID] {
			continue
		}
		v := vehicleByID[need.VehicleID]
		prefs, err := s.src.Preferences(ctx, v.MemberID)
		if err != nil {
			s.log.Warnf("preferences for %s: %v", v.MemberID, err)
			prefs = model.DefaultPreferences(v.MemberID)
		}
		if !notify.ShouldNotifyNow(need, prefs, now) {
			continue
		}
		var rec *engine.ChargeRecommendation
		if need.Service == model.ServiceCharge {
			r := engine.GetChargeRecommendation(v, s.cfg.Pricing, now)
			rec = &r
		}
		n := s.gen.Generate(need, bundleByVehicle[need.VehicleID], rec, prefs, resources, now)
		if !s.registry.Add(n) {
			continue
		}
		seen[need.VehicleID] = true
		notified++
		s.bus.Publish(n)
	}

	if expired := s.registry.Sweep(now, time.Duration(s.cfg.Notifier.TTLHours)*time.Hour); expired > 0 {
		s.log.Infof("expired %d stale notifications", expired)
	}

	if rec, ok := s.sink.(coremetrics.EnginePassRecorder); ok {
		ev := coremetrics.EnginePassEvent{
			Vehicles:      len(vehicles),
			Needs:         len(queue),
			Bundles:       len(bundles),
			Notifications: notified,
			Duration:      time.Since(start),
			Time:          now,
		}
		if err := rec.RecordEnginePass(ev); err != nil {
			s.log.Warnf("metrics sink: %v", err)
		}
	}
	s.log.Infof("pass complete: %d vehicles, %d needs, %d bundles, %d notified", len(vehicles), len(queue), len(bundles), notified)
}

// deliverNotifications forwards bus events to the push transport and the
// metric sinks.
func (s *Service) deliverNotifications(ctx context.Context) {
	defer monitoring.Recover()
	sub := s.bus.Subscribe()
	defer s.bus.Unsubscribe(sub)
	for {
		select {
		case <-ctx.Done():
			return
		case n, ok := <-sub:
			if !ok {
				return
			}
			if err := s.publisher.PublishNotification(n); err != nil {
				s.log.Errorf("publish notification %s: %v", n.ID, err)
				monitoring.CaptureException(err, map[string]string{"stage": "publish"})
			}
			if rec, ok := s.sink.(coremetrics.NotificationRecorder); ok {
				ev := coremetrics.NotificationEvent{
					NotificationID: n.ID,
					VehicleID:      n.VehicleID,
					Service:        n.Service,
					Severity:       n.Severity,
					Urgency:        n.Urgency,
					Time:           n.CreatedAt,
				}
				if err := rec.RecordNotification(ev); err != nil {
					s.log.Warnf("metrics sink: %v", err)
				}
			}
		}
	}
}

func (s *Service) serveAPI(ctx context.Context) error {
	mux := http.NewServeMux()
	thresholds := s.cfg.Engine.Thresholds
	mux.Handle("/api/fleet/health", apischedule.NewHealthHandler(s.src, thresholds))
	mux.Handle("/api/schedule/queue", apischedule.NewQueueHandler(s.src, thresholds, s.cfg.Pricing))
	mux.Handle("/api/schedule/bundles", apischedule.NewBundlesHandler(s.src, thresholds, s.cfg.Pricing))
	mux.Handle("/api/schedule/charge", apischedule.NewChargeHandler(s.src, s.cfg.Pricing))
	mux.Handle("/api/bookings/accept", s.trackStatus(apischedule.NewAcceptHandler(s.Booking), model.NotificationAccepted))
	mux.Handle("/api/bookings/decline", s.trackStatus(apischedule.NewDeclineHandler(s.Booking), model.NotificationDeclined))
	mux.Handle("/api/bookings/reschedule", apischedule.NewRescheduleHandler(s.Booking))
	mux.Handle("/api/bookings/cancel", apischedule.NewCancelHandler(s.Booking))
	mux.Handle("/api/bookings/complete", apischedule.NewCompleteHandler(s.Booking))
	mux.HandleFunc("/api/notifications", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		apischedule.WriteJSON(w, s.registry.Pending())
	})

	srv := &http.Server{Addr: s.cfg.API.Addr, Handler: mux}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.log.Errorf("api shutdown: %v", err)
		}
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// trackStatus mirrors booking responses into the notification registry so
// the pending list stays accurate.
func (s *Service) trackStatus(next http.Handler, status model.NotificationStatus) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.URL.Query().Get("notification_id")
		next.ServeHTTP(w, r)
		if id != "" {
			s.registry.SetStatus(id, status)
		}
	})
}

// Close releases the service's external connections.
func (s *Service) Close() error {
	s.bus.Close()
	err := s.publisher.Close()
	if s.sqlite != nil {
		if cerr := s.sqlite.Close(); err == nil {
			err = cerr
		}
	}
	monitoring.Flush(2 * time.Second)
	return err
}
