package dictionary

import "time"

// Metrics receives lookup events. Implementations must be cheap; they
// are called on every search.
type Metrics interface {
	Hit()
	Miss()
	Evict()
	Size(entries int)
	SourceLatency(tier Tier, d time.Duration, err error)
}

// NoopMetrics is the default Metrics and does nothing.
type NoopMetrics struct{}

func (NoopMetrics) Hit()                                     {}
func (NoopMetrics) Miss()                                    {}
func (NoopMetrics) Evict()                                   {}
func (NoopMetrics) Size(int)                                 {}
func (NoopMetrics) SourceLatency(Tier, time.Duration, error) {}

var _ Metrics = NoopMetrics{}

// MultiMetrics fans events out to several sinks.
type MultiMetrics []Metrics

func (m MultiMetrics) Hit() {
	for _, s := range m {
		s.Hit()
	}
}

func (m MultiMetrics) Miss() {
	for _, s := range m {
		s.Miss()
	}
}

func (m MultiMetrics) Evict() {
	for _, s := range m {
		s.Evict()
	}
}

func (m MultiMetrics) Size(entries int) {
	for _, s := range m {
		s.Size(entries)
	}
}

func (m MultiMetrics) SourceLatency(tier Tier, d time.Duration, err error) {
	for _, s := range m {
		s.SourceLatency(tier, d, err)
	}
}
