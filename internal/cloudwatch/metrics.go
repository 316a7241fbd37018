// Package cloudwatch publishes dictionary lookup metrics to Amazon CloudWatch.
package cloudwatch

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"

	"github.com/jmurray2011/lexicon/internal/dictionary"
)

// maxDatums is the PutMetricData limit on datums per request.
const maxDatums = 1000

// Metric names
const (
	MetricHits          = "CacheHits"
	MetricMisses        = "CacheMisses"
	MetricEvictions     = "CacheEvictions"
	MetricCacheSize     = "CacheSize"
	MetricSourceLatency = "SourceLatency"
	MetricSourceErrors  = "SourceErrors"
)

// PutMetricDataAPI is the subset of the CloudWatch client the Publisher uses.
type PutMetricDataAPI interface {
	PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

// Stats is a point-in-time copy of the counters held by a Publisher.
type Stats struct {
	Hits      int64
	Misses    int64
	Evictions int64
	Size      int
	Latency   map[dictionary.Tier]LatencyStats
}

// LatencyStats aggregates source call durations for one tier.
type LatencyStats struct {
	Count  int64
	Errors int64
	Sum    time.Duration
	Min    time.Duration
	Max    time.Duration
}

// Mean returns the average duration, or zero when nothing was recorded.
func (l LatencyStats) Mean() time.Duration {
	if l.Count == 0 {
		return 0
	}
	return l.Sum / time.Duration(l.Count)
}

func (l LatencyStats) merge(o LatencyStats) LatencyStats {
	if o.Count == 0 {
		return l
	}
	if l.Count == 0 {
		return o
	}
	l.Count += o.Count
	l.Errors += o.Errors
	l.Sum += o.Sum
	l.Min = min(l.Min, o.Min)
	l.Max = max(l.Max, o.Max)
	return l
}

func (l LatencyStats) add(d time.Duration, err error) LatencyStats {
	if l.Count == 0 || d < l.Min {
		l.Min = d
	}
	if d > l.Max {
		l.Max = d
	}
	l.Count++
	l.Sum += d
	if err != nil {
		l.Errors++
	}
	return l
}

// Publisher implements dictionary.Metrics by aggregating events in memory
// and sending them to CloudWatch on Flush.
type Publisher struct {
	client     PutMetricDataAPI
	namespace  string
	dimensions []types.Dimension
	now        func() time.Time

	mu      sync.Mutex
	pending Stats
	total   Stats
	dirty   bool
}

var _ dictionary.Metrics = (*Publisher)(nil)

// PublisherOption configures a Publisher.
type PublisherOption func(*Publisher)

// WithDimension adds a dimension to every published datum.
func WithDimension(name, value string) PublisherOption {
	return func(p *Publisher) {
		p.dimensions = append(p.dimensions, types.Dimension{
			Name:  aws.String(name),
			Value: aws.String(value),
		})
	}
}

// NewPublisher creates a Publisher that writes to namespace.
func NewPublisher(client PutMetricDataAPI, namespace string, opts ...PublisherOption) (*Publisher, error) {
	if client == nil {
		return nil, fmt.Errorf("cloudwatch publisher requires a client")
	}
	if namespace == "" {
		return nil, fmt.Errorf("cloudwatch publisher requires a namespace")
	}

	p := &Publisher{
		client:    client,
		namespace: namespace,
		now:       time.Now,
		pending:   Stats{Latency: make(map[dictionary.Tier]LatencyStats)},
		total:     Stats{Latency: make(map[dictionary.Tier]LatencyStats)},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

func (p *Publisher) Hit() {
	p.mu.Lock()
	p.pending.Hits++
	p.total.Hits++
	p.dirty = true
	p.mu.Unlock()
}

func (p *Publisher) Miss() {
	p.mu.Lock()
	p.pending.Misses++
	p.total.Misses++
	p.dirty = true
	p.mu.Unlock()
}

func (p *Publisher) Evict() {
	p.mu.Lock()
	p.pending.Evictions++
	p.total.Evictions++
	p.dirty = true
	p.mu.Unlock()
}

func (p *Publisher) Size(entries int) {
	p.mu.Lock()
	p.pending.Size = entries
	p.total.Size = entries
	p.dirty = true
	p.mu.Unlock()
}

func (p *Publisher) SourceLatency(tier dictionary.Tier, d time.Duration, err error) {
	p.mu.Lock()
	p.pending.Latency[tier] = p.pending.Latency[tier].add(d, err)
	p.total.Latency[tier] = p.total.Latency[tier].add(d, err)
	p.dirty = true
	p.mu.Unlock()
}

// Stats returns the totals recorded since the Publisher was created.
func (p *Publisher) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return copyStats(p.total)
}

// Flush sends everything recorded since the last successful Flush. On
// error the unsent values are merged back and retried by the next Flush.
func (p *Publisher) Flush(ctx context.Context) error {
	p.mu.Lock()
	if !p.dirty {
		p.mu.Unlock()
		return nil
	}
	pending := p.pending
	p.pending = Stats{Size: pending.Size, Latency: make(map[dictionary.Tier]LatencyStats)}
	p.dirty = false
	p.mu.Unlock()

	datums := p.datums(pending, p.now())
	for batch := range slices.Chunk(datums, maxDatums) {
		_, err := p.client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
			Namespace:  aws.String(p.namespace),
			MetricData: batch,
		})
		if err != nil {
			p.restore(pending)
			return fmt.Errorf("failed to put metric data: %w", err)
		}
	}
	return nil
}

func (p *Publisher) restore(s Stats) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pending.Hits += s.Hits
	p.pending.Misses += s.Misses
	p.pending.Evictions += s.Evictions
	for tier, l := range s.Latency {
		p.pending.Latency[tier] = p.pending.Latency[tier].merge(l)
	}
	p.dirty = true
}

// datums converts stats into CloudWatch metric data. Counters with no
// events are omitted; cache size is always reported.
func (p *Publisher) datums(s Stats, ts time.Time) []types.MetricDatum {
	var out []types.MetricDatum

	count := func(name string, v int64, dims []types.Dimension) {
		if v == 0 {
			return
		}
		out = append(out, types.MetricDatum{
			MetricName: aws.String(name),
			Dimensions: dims,
			Timestamp:  aws.Time(ts),
			Unit:       types.StandardUnitCount,
			Value:      aws.Float64(float64(v)),
		})
	}

	count(MetricHits, s.Hits, p.dimensions)
	count(MetricMisses, s.Misses, p.dimensions)
	count(MetricEvictions, s.Evictions, p.dimensions)
	out = append(out, types.MetricDatum{
		MetricName: aws.String(MetricCacheSize),
		Dimensions: p.dimensions,
		Timestamp:  aws.Time(ts),
		Unit:       types.StandardUnitCount,
		Value:      aws.Float64(float64(s.Size)),
	})

	tiers := make([]dictionary.Tier, 0, len(s.Latency))
	for tier := range s.Latency {
		tiers = append(tiers, tier)
	}
	slices.Sort(tiers)

	for _, tier := range tiers {
		l := s.Latency[tier]
		if l.Count == 0 {
			continue
		}
		dims := append(slices.Clone(p.dimensions), types.Dimension{
			Name:  aws.String("Tier"),
			Value: aws.String(string(tier)),
		})
		out = append(out, types.MetricDatum{
			MetricName: aws.String(MetricSourceLatency),
			Dimensions: dims,
			Timestamp:  aws.Time(ts),
			Unit:       types.StandardUnitMilliseconds,
			StatisticValues: &types.StatisticSet{
				SampleCount: aws.Float64(float64(l.Count)),
				Sum:         aws.Float64(milliseconds(l.Sum)),
				Minimum:     aws.Float64(milliseconds(l.Min)),
				Maximum:     aws.Float64(milliseconds(l.Max)),
			},
		})
		count(MetricSourceErrors, l.Errors, dims)
	}

	return out
}

func milliseconds(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

func copyStats(s Stats) Stats {
	out := s
	out.Latency = make(map[dictionary.Tier]LatencyStats, len(s.Latency))
	for k, v := range s.Latency {
		out.Latency[k] = v
	}
	return out
}
