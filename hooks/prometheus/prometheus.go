// Package prometheus exports cache events as Prometheus counters.
package prometheus

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/unkn0wn-root/nscache"
)

var (
	hitLabels  = prometheus.Labels{"result": "hit"}
	missLabels = prometheus.Labels{"result": "miss"}
)

// Hooks counts events. All counters carry a constant "ns" label so several
// caches can share one registry.
type Hooks struct {
	lookups       *prometheus.CounterVec
	expired       prometheus.Counter
	corrupt       prometheus.Counter
	sweeps        prometheus.Counter
	sweepScanned  prometheus.Counter
	sweepRemoved  prometheus.Counter
	prefixRemoved prometheus.Counter
	faults        *prometheus.CounterVec
}

var _ nscache.Hooks = (*Hooks)(nil)

// New registers the counters on reg under the "nscache" metric namespace.
func New(reg prometheus.Registerer, namespace string) (*Hooks, error) {
	constLabels := prometheus.Labels{"ns": namespace}
	counter := func(name, help string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "nscache",
			Name:        name,
			Help:        help,
			ConstLabels: constLabels,
		})
	}

	h := &Hooks{
		lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   "nscache",
			Name:        "lookups_total",
			Help:        "Get calls by result",
			ConstLabels: constLabels,
		}, []string{"result"}),
		expired:       counter("expired_on_read_total", "expired entries deleted by Get"),
		corrupt:       counter("corrupt_entries_total", "undecodable entries deleted"),
		sweeps:        counter("sweeps_total", "namespace sweeps run"),
		sweepScanned:  counter("sweep_scanned_total", "keys visited by sweeps"),
		sweepRemoved:  counter("sweep_removed_total", "entries deleted by sweeps"),
		prefixRemoved: counter("prefix_removed_total", "entries deleted by RemoveAll"),
		faults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   "nscache",
			Name:        "store_faults_total",
			Help:        "store or codec failures by operation",
			ConstLabels: constLabels,
		}, []string{"op"}),
	}

	errs := []error{}
	for _, c := range []prometheus.Collector{
		h.lookups, h.expired, h.corrupt, h.sweeps,
		h.sweepScanned, h.sweepRemoved, h.prefixRemoved, h.faults,
	} {
		if err := reg.Register(c); err != nil {
			errs = append(errs, err)
		}
	}
	return h, errors.Join(errs...)
}

func (h *Hooks) Lookup(hit bool) {
	if hit {
		h.lookups.With(hitLabels).Inc()
	} else {
		h.lookups.With(missLabels).Inc()
	}
}

func (h *Hooks) ExpiredOnRead(string) { h.expired.Inc() }
func (h *Hooks) CorruptEntry(string)  { h.corrupt.Inc() }

func (h *Hooks) Swept(_ string, scanned, removed int) {
	h.sweeps.Inc()
	h.sweepScanned.Add(float64(scanned))
	h.sweepRemoved.Add(float64(removed))
}

func (h *Hooks) PrefixRemoved(_ string, removed int) { h.prefixRemoved.Add(float64(removed)) }

func (h *Hooks) StoreFault(op, _ string, _ error) {
	h.faults.With(prometheus.Labels{"op": op}).Inc()
}
