package scraper

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles Prometheus collectors for the import pipeline on a
// dedicated registry.
type Metrics struct {
	Registry         *prometheus.Registry
	PagesTotal       prometheus.Counter
	ProductsTotal    prometheus.Counter
	ErrorsTotal      *prometheus.CounterVec
	ChallengeWait    prometheus.Histogram
	CheckpointsTotal prometheus.Counter
	RelaunchesTotal  prometheus.Counter
	CategoriesPerRun prometheus.Gauge
}

func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	pages := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "importer_pages_total",
		Help: "Total listing pages fetched.",
	})
	products := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "importer_products_total",
		Help: "Total products accepted into run output.",
	})
	errorsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "importer_errors_total",
			Help: "Total errors by failure tier.",
		},
		[]string{"tier"},
	)
	challengeWait := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "importer_challenge_wait_seconds",
		Help:    "Time spent waiting out the anti-bot interstitial.",
		Buckets: []float64{1, 2, 5, 10, 20, 30, 60},
	})
	checkpoints := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "importer_checkpoints_total",
		Help: "Total checkpoint files written.",
	})
	relaunches := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "importer_browser_relaunches_total",
		Help: "Total browser relaunches after a dead process.",
	})
	categories := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "importer_categories_selected",
		Help: "Leaf categories selected for the current run.",
	})

	registry.MustRegister(pages, products, errorsTotal, challengeWait, checkpoints, relaunches, categories)

	return &Metrics{
		Registry:         registry,
		PagesTotal:       pages,
		ProductsTotal:    products,
		ErrorsTotal:      errorsTotal,
		ChallengeWait:    challengeWait,
		CheckpointsTotal: checkpoints,
		RelaunchesTotal:  relaunches,
		CategoriesPerRun: categories,
	}
}

func (m *Metrics) IncPage() {
	if m == nil {
		return
	}
	m.PagesTotal.Inc()
}

func (m *Metrics) AddProducts(n int) {
	if m == nil {
		return
	}
	m.ProductsTotal.Add(float64(n))
}

// IncError records an error by blast-radius tier: page, category or run.
func (m *Metrics) IncError(tier string) {
	if m == nil {
		return
	}
	m.ErrorsTotal.WithLabelValues(tier).Inc()
}

func (m *Metrics) ObserveChallengeWait(d time.Duration) {
	if m == nil {
		return
	}
	m.ChallengeWait.Observe(d.Seconds())
}

func (m *Metrics) IncCheckpoint() {
	if m == nil {
		return
	}
	m.CheckpointsTotal.Inc()
}

func (m *Metrics) IncRelaunch() {
	if m == nil {
		return
	}
	m.RelaunchesTotal.Inc()
}

func (m *Metrics) SetCategories(n int) {
	if m == nil {
		return
	}
	m.CategoriesPerRun.Set(float64(n))
}
