package metrics

import (
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	promhttp "github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "sergey"

// PrometheusRecorder implements Recorder with Prometheus collectors.
type PrometheusRecorder struct {
	reg             *prom.Registry
	buildDuration   prom.Histogram
	buildOutcome    *prom.CounterVec
	fileDuration    *prom.HistogramVec
	fileResults     *prom.CounterVec
	partials        prom.Gauge
	missingPartials prom.Counter
}

// NewPrometheusRecorder creates the collectors and registers them with reg,
// or with a fresh registry when reg is nil.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		reg: reg,
		buildDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "build_duration_seconds",
			Help:      "Duration of a full site build",
			Buckets:   prom.DefBuckets,
		}),
		buildOutcome: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "build_outcomes_total",
			Help:      "Builds by final status",
		}, []string{"outcome"}),
		fileDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "file_duration_seconds",
			Help:      "Time spent compiling or copying one file",
			Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"kind"}),
		fileResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "file_results_total",
			Help:      "Processed files by kind and result",
		}, []string{"kind", "result"}),
		partials: prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "partials",
			Help:      "Partials loaded for the last build",
		}),
		missingPartials: prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "missing_partials_total",
			Help:      "Import references that resolved to no partial",
		}),
	}
	reg.MustRegister(pr.buildDuration, pr.buildOutcome, pr.fileDuration, pr.fileResults, pr.partials, pr.missingPartials)
	return pr
}

// Registry is the registry the collectors live in.
func (p *PrometheusRecorder) Registry() *prom.Registry { return p.reg }

func (p *PrometheusRecorder) ObserveBuildDuration(d time.Duration) {
	p.buildDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncBuildOutcome(outcome BuildOutcome) {
	p.buildOutcome.WithLabelValues(string(outcome)).Inc()
}

func (p *PrometheusRecorder) ObserveFileDuration(kind FileKind, d time.Duration) {
	p.fileDuration.WithLabelValues(string(kind)).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncFileResult(kind FileKind, result ResultLabel) {
	p.fileResults.WithLabelValues(string(kind), string(result)).Inc()
}

func (p *PrometheusRecorder) SetPartials(n int) { p.partials.Set(float64(n)) }

func (p *PrometheusRecorder) AddMissingPartials(n int64) {
	if n > 0 {
		p.missingPartials.Add(float64(n))
	}
}

// HTTPHandler serves the metrics of reg in the Prometheus exposition format.
func HTTPHandler(reg *prom.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
