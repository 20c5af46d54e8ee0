package metrics

import (
	"strconv"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	reg             *prom.Registry
	taskDuration    *prom.HistogramVec
	taskResults     *prom.CounterVec
	commandDuration *prom.HistogramVec
}

// NewPrometheusRecorder constructs and registers Prometheus metrics on reg.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{reg: reg}
	pr.taskDuration = prom.NewHistogramVec(prom.HistogramOpts{
		Namespace: "fbox",
		Name:      "task_duration_seconds",
		Help:      "Duration of individual tasks",
		Buckets:   []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120, 300, 900},
	}, []string{"task"})
	pr.taskResults = prom.NewCounterVec(prom.CounterOpts{
		Namespace: "fbox",
		Name:      "task_results_total",
		Help:      "Task result counts by outcome",
	}, []string{"task", "result"})
	pr.commandDuration = prom.NewHistogramVec(prom.HistogramOpts{
		Namespace: "fbox",
		Name:      "command_duration_seconds",
		Help:      "Duration of external commands by exit code",
		Buckets:   prom.DefBuckets,
	}, []string{"exit_code"})
	reg.MustRegister(pr.taskDuration, pr.taskResults, pr.commandDuration)
	return pr
}

// Registry returns the registry the recorder was registered on.
func (p *PrometheusRecorder) Registry() *prom.Registry {
	return p.reg
}

func (p *PrometheusRecorder) ObserveTaskDuration(task string, d time.Duration) {
	if p == nil || p.taskDuration == nil {
		return
	}
	p.taskDuration.WithLabelValues(task).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncTaskResult(task string, result ResultLabel) {
	if p == nil || p.taskResults == nil {
		return
	}
	p.taskResults.WithLabelValues(task, string(result)).Inc()
}

func (p *PrometheusRecorder) ObserveCommandDuration(d time.Duration, exitCode int) {
	if p == nil || p.commandDuration == nil {
		return
	}
	p.commandDuration.WithLabelValues(strconv.Itoa(exitCode)).Observe(d.Seconds())
}

// WriteTextfile writes every metric gathered from the recorder's registry to
// path in the text exposition format.
func (p *PrometheusRecorder) WriteTextfile(path string) error {
	return prom.WriteToTextfile(path, p.reg)
}
