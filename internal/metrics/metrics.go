// Package metrics exposes Prometheus collectors for sequence generation runs.
//
// Generation is a batch job, so collectors live on a caller-supplied registry
// and are usually exported once through WriteTextfile for a node_exporter
// textfile collector.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome label values for studyseq_generation_runs_total.
const (
	OutcomeSuccess = "success"
	OutcomeInvalid = "invalid"
)

// Generation groups the collectors updated by one or more generation runs.
// A nil *Generation is valid and records nothing.
type Generation struct {
	Runs            *prometheus.CounterVec
	SequencesTotal  prometheus.Counter
	SequenceSteps   prometheus.Histogram
	RunDuration     prometheus.Histogram
	InterruptsTotal prometheus.Counter
}

// NewGeneration registers the generation collectors on reg.
func NewGeneration(reg prometheus.Registerer) *Generation {
	factory := promauto.With(reg)
	return &Generation{
		Runs: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "studyseq_generation_runs_total",
			Help: "Sequence generation runs by outcome",
		}, []string{"outcome"}),
		SequencesTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "studyseq_sequences_generated_total",
			Help: "Total number of participant sequences generated",
		}),
		SequenceSteps: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "studyseq_sequence_steps",
			Help:    "Flattened step count per generated sequence",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		}),
		RunDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "studyseq_generation_duration_seconds",
			Help:    "Wall time of one generation run",
			Buckets: prometheus.DefBuckets,
		}),
		InterruptsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "studyseq_interruptions_inserted_total",
			Help: "Interruption firings inserted across all generated sequences",
		}),
	}
}

// RecordSuccess records a completed run and the step count of each sequence.
func (m *Generation) RecordSuccess(elapsed time.Duration, stepCounts []int, interruptions int) {
	if m == nil {
		return
	}
	m.Runs.WithLabelValues(OutcomeSuccess).Inc()
	m.RunDuration.Observe(elapsed.Seconds())
	m.SequencesTotal.Add(float64(len(stepCounts)))
	for _, n := range stepCounts {
		m.SequenceSteps.Observe(float64(n))
	}
	m.InterruptsTotal.Add(float64(interruptions))
}

// RecordInvalid records a run rejected for a configuration error.
func (m *Generation) RecordInvalid() {
	if m == nil {
		return
	}
	m.Runs.WithLabelValues(OutcomeInvalid).Inc()
}

// WriteTextfile writes every metric gathered from g to path in the text
// exposition format. The write is atomic (temp file + rename).
func WriteTextfile(path string, g prometheus.Gatherer) error {
	return prometheus.WriteToTextfile(path, g)
}
