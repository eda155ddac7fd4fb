package middleware

import (
	"context"
	"fmt"
	"sync"
	"time"

	"QuoteLens/internal/domain/models"
	domrepo "QuoteLens/internal/domain/repository"
)

// Proc is the minimal processor interface the pipeline needs.
type Proc interface {
	Process(ctx context.Context, t models.PriceTick) error
}

// RealtimePipeline sits between the live price stream and the watchlist.
// It validates ticks, keeps at most one tick per symbol per interval and
// buffers ticks while the downstream fails.
type RealtimePipeline struct {
	proc        Proc
	metrics     domrepo.Metrics
	minInterval time.Duration
	bufSize     int
	bufCh       chan models.PriceTick
	stopCh      chan struct{}
	started     bool
	mu          sync.Mutex
	lastSeen    map[string]time.Time // per-symbol last accepted time
	transform   func(models.PriceTick) models.PriceTick
	now         func() time.Time
}

type PipelineOption func(*RealtimePipeline)

// WithMinInterval sets the minimum time between two accepted ticks of one symbol.
func WithMinInterval(d time.Duration) PipelineOption {
	return func(p *RealtimePipeline) {
		if d >= 0 {
			p.minInterval = d
		}
	}
}

// WithBufferSize sets the temporary buffer size when downstream is unavailable.
func WithBufferSize(n int) PipelineOption {
	return func(p *RealtimePipeline) {
		if n > 0 {
			p.bufSize = n
		}
	}
}

// WithTransform sets a hook applied to each tick before throttling.
func WithTransform(fn func(models.PriceTick) models.PriceTick) PipelineOption {
	return func(p *RealtimePipeline) { p.transform = fn }
}

// NewRealtimePipeline creates a new pipeline.
func NewRealtimePipeline(proc Proc, metrics domrepo.Metrics, opts ...PipelineOption) *RealtimePipeline {
	p := &RealtimePipeline{
		proc:        proc,
		metrics:     metrics,
		minInterval: 10 * time.Second,
		bufSize:     256,
		stopCh:      make(chan struct{}),
		lastSeen:    make(map[string]time.Time),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.bufCh = make(chan models.PriceTick, p.bufSize)
	return p
}

// Start launches background flushing of buffered ticks.
func (p *RealtimePipeline) Start(ctx context.Context) {
	p.mu.Lock()
	if p.started {
		p.mu.Unlock()
		return
	}
	p.started = true
	p.mu.Unlock()

	go func() {
		backoff := 50 * time.Millisecond
		for {
			select {
			case <-ctx.Done():
				return
			case <-p.stopCh:
				return
			case t := <-p.bufCh:
				if err := p.proc.Process(ctx, t); err != nil {
					if backoff < 2*time.Second {
						backoff *= 2
					}
					p.metrics.RecordError("pipeline_flush")
					time.Sleep(backoff)
					// requeue if space; drop otherwise
					select {
					case p.bufCh <- t:
					default:
						p.metrics.RecordError("pipeline_buffer_drop")
					}
				} else {
					backoff = 50 * time.Millisecond
				}
			}
		}
	}()
}

// Stop stops the background flushing. It is safe to call more than once.
func (p *RealtimePipeline) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.started {
		return
	}
	p.started = false
	close(p.stopCh)
}

// Process validates, throttles and forwards a tick. Throttled ticks are dropped
// without error. Downstream failures buffer the tick and are returned.
func (p *RealtimePipeline) Process(ctx context.Context, t models.PriceTick) error {
	start := time.Now()
	if p.transform != nil {
		t = p.transform(t)
	}
	if err := validateTick(t); err != nil {
		p.metrics.RecordError("pipeline_validate")
		return err
	}
	if !p.allow(t.Symbol) {
		p.metrics.RecordError("pipeline_throttle")
		return nil
	}

	if err := p.proc.Process(ctx, t); err != nil {
		p.metrics.RecordError("pipeline_process")
		select {
		case p.bufCh <- t:
		default:
			p.metrics.RecordError("pipeline_buffer_full")
		}
		return fmt.Errorf("pipeline downstream: %w", err)
	}
	p.metrics.RecordLatency("pipeline_process", time.Since(start).Seconds())
	return nil
}

// Buffered reports how many ticks wait for a retry.
func (p *RealtimePipeline) Buffered() int { return len(p.bufCh) }

func validateTick(t models.PriceTick) error {
	if t.Symbol == "" {
		return fmt.Errorf("symbol empty")
	}
	if t.Timestamp.IsZero() {
		return fmt.Errorf("timestamp invalid")
	}
	if t.Price <= 0 || t.Volume < 0 {
		return fmt.Errorf("non-positive price or negative volume")
	}
	return nil
}

func (p *RealtimePipeline) allow(symbol string) bool {
	if p.minInterval <= 0 {
		return true
	}
	now := p.now()
	p.mu.Lock()
	defer p.mu.Unlock()
	last, ok := p.lastSeen[symbol]
	if ok && now.Sub(last) < p.minInterval {
		return false
	}
	p.lastSeen[symbol] = now
	return true
}
