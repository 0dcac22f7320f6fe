package report

import (
	"fmt"

	"github.com/mwiater/hashbench/internal/benchmark"
	"github.com/prometheus/client_golang/prometheus"
)

// WritePromFile writes r in the Prometheus text exposition format to path,
// for pickup by the node exporter textfile collector.
func WritePromFile(path string, r *benchmark.Report) error {
	reg := prometheus.NewRegistry()

	nsPerOp := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "hashbench",
		Name:      "ns_per_op",
		Help:      "Mean nanoseconds per operation after outlier removal.",
	}, []string{"case"})
	errorNs := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "hashbench",
		Name:      "error_ns_per_op",
		Help:      "Half-width of the confidence interval of the mean.",
	}, []string{"case"})
	bytesPerOp := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "hashbench",
		Name:      "bytes_per_op",
		Help:      "Mean heap bytes allocated per operation.",
	}, []string{"case"})
	allocsPerOp := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "hashbench",
		Name:      "allocs_per_op",
		Help:      "Mean heap allocations per operation.",
	}, []string{"case"})
	status := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "hashbench",
		Name:      "case_status",
		Help:      "1 for the status a case ended in, 0 otherwise.",
	}, []string{"case", "status"})
	samples := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "hashbench",
		Name:      "samples",
		Help:      "Samples retained after outlier removal.",
	}, []string{"case"})
	reg.MustRegister(nsPerOp, errorNs, bytesPerOp, allocsPerOp, status, samples)

	for _, e := range r.Entries {
		for _, s := range []benchmark.Status{benchmark.StatusOK, benchmark.StatusSkipped, benchmark.StatusFailed} {
			v := 0.0
			if e.Status == s {
				v = 1
			}
			status.WithLabelValues(e.Name, string(s)).Set(v)
		}
		if e.Summary == nil {
			continue
		}
		nsPerOp.WithLabelValues(e.Name).Set(e.Summary.MeanNsPerOp)
		errorNs.WithLabelValues(e.Name).Set(e.Summary.ErrorNsPerOp)
		samples.WithLabelValues(e.Name).Set(float64(e.Summary.Retained))
		if e.MemoryAvailable {
			bytesPerOp.WithLabelValues(e.Name).Set(e.Summary.MeanBytesPerOp)
			allocsPerOp.WithLabelValues(e.Name).Set(e.Summary.MeanAllocsPerOp)
		}
	}

	if err := prometheus.WriteToTextfile(path, reg); err != nil {
		return fmt.Errorf("write prometheus textfile %q: %w", path, err)
	}
	return nil
}
