package observability

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// TrackerCollector bundles Prometheus metrics for the propagation pipeline
// and the catalog store, and provides a ready-to-serve /metrics handler.
type TrackerCollector struct {
	gatherer prometheus.Gatherer

	ObjectsProcessed prometheus.Counter
	RecordsDropped   *prometheus.CounterVec
	PassDuration     prometheus.Histogram

	CatalogRecords    prometheus.Gauge
	CatalogObjects    prometheus.Gauge
	CacheEntries      prometheus.Gauge
	CacheUnresolvable prometheus.Gauge
	ReentryObjects    prometheus.Gauge
}

// NewTrackerCollector registers tracker Prometheus metrics against the
// provided registerer, defaulting to the global Prometheus registry when nil.
func NewTrackerCollector(reg prometheus.Registerer) (*TrackerCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	processed, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "tracker_objects_processed_total",
		Help: "Total number of processed objects emitted across all propagation passes.",
	}), "tracker_objects_processed_total")
	if err != nil {
		return nil, err
	}

	dropped := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tracker_records_dropped_total",
		Help: "Total number of catalog records dropped from pass output, labeled by reason.",
	}, []string{"reason"})
	dropped, err = registerCounterVec(reg, dropped, "tracker_records_dropped_total")
	if err != nil {
		return nil, err
	}

	passDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "tracker_pass_duration_seconds",
		Help:    "Duration of full propagation passes in seconds.",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
	})
	passDuration, err = registerHistogram(reg, passDuration, "tracker_pass_duration_seconds")
	if err != nil {
		return nil, err
	}

	catalogRecords, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "catalog_records",
		Help: "Current number of catalog records across all groups.",
	}), "catalog_records")
	if err != nil {
		return nil, err
	}
	catalogObjects, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "catalog_objects",
		Help: "Number of processed objects in the latest published pass.",
	}), "catalog_objects")
	if err != nil {
		return nil, err
	}
	cacheEntries, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "tracker_cache_entries",
		Help: "Resolution cache entries, including unresolvable sentinels.",
	}), "tracker_cache_entries")
	if err != nil {
		return nil, err
	}
	cacheUnresolvable, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "tracker_cache_unresolvable",
		Help: "Resolution cache entries that are permanent unresolvable sentinels.",
	}), "tracker_cache_unresolvable")
	if err != nil {
		return nil, err
	}
	reentry, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "tracker_reentry_objects",
		Help: "Objects in the latest pass flagged as atmospheric-reentry risks.",
	}), "tracker_reentry_objects")
	if err != nil {
		return nil, err
	}

	return &TrackerCollector{
		gatherer:          gatherer,
		ObjectsProcessed:  processed,
		RecordsDropped:    dropped,
		PassDuration:      passDuration,
		CatalogRecords:    catalogRecords,
		CatalogObjects:    catalogObjects,
		CacheEntries:      cacheEntries,
		CacheUnresolvable: cacheUnresolvable,
		ReentryObjects:    reentry,
	}, nil
}

// Handler exposes a ready-to-use /metrics handler.
func (c *TrackerCollector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// AddProcessed adds to the processed-objects counter. Satisfies the
// pipeline's MetricsRecorder interface.
func (c *TrackerCollector) AddProcessed(n int) {
	if c == nil || c.ObjectsProcessed == nil || n <= 0 {
		return
	}
	c.ObjectsProcessed.Add(float64(n))
}

// IncDropped counts a dropped record under its reason label.
func (c *TrackerCollector) IncDropped(reason string) {
	if c == nil || c.RecordsDropped == nil {
		return
	}
	c.RecordsDropped.WithLabelValues(reason).Inc()
}

// ObservePassDuration records the duration of one propagation pass.
func (c *TrackerCollector) ObservePassDuration(d time.Duration) {
	if c == nil || c.PassDuration == nil {
		return
	}
	c.PassDuration.Observe(d.Seconds())
}

// SetCacheStats updates the resolution cache gauges.
func (c *TrackerCollector) SetCacheStats(entries, unresolvable int) {
	if c == nil {
		return
	}
	if c.CacheEntries != nil {
		c.CacheEntries.Set(float64(entries))
	}
	if c.CacheUnresolvable != nil {
		c.CacheUnresolvable.Set(float64(unresolvable))
	}
}

// SetCatalogCounts satisfies the catalog store's MetricsRecorder interface
// so the store can drive gauge values directly from its mutators.
func (c *TrackerCollector) SetCatalogCounts(records, objects int) {
	if c == nil {
		return
	}
	if c.CatalogRecords != nil {
		c.CatalogRecords.Set(float64(records))
	}
	if c.CatalogObjects != nil {
		c.CatalogObjects.Set(float64(objects))
	}
}

// SetReentryCount updates the reentry-risk gauge for the latest pass.
func (c *TrackerCollector) SetReentryCount(count int) {
	if c == nil || c.ReentryObjects == nil {
		return
	}
	c.ReentryObjects.Set(float64(count))
}

func registerCounter(reg prometheus.Registerer, counter prometheus.Counter, name string) (prometheus.Counter, error) {
	if err := reg.Register(counter); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return counter, nil
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogram(reg prometheus.Registerer, hist prometheus.Histogram, name string) (prometheus.Histogram, error) {
	if err := reg.Register(hist); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Histogram); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return hist, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}
