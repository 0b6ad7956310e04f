package proxyscan

import (
	"context"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/rs/xid"
	"github.com/zan8in/gologger"
	"go.uber.org/zap"
)

// Scanner is the main entry point for proxied port scanning
type Scanner struct {
	options    *Options
	prober     Prober
	classifier *Classifier
	diag       *zap.Logger

	cbMu            sync.Mutex
	currentProgress uint64
	total           uint64
}

// NewScanner creates a scanner that probes through opt.Proxy.
func NewScanner(opt *Options) (*Scanner, error) {
	if opt == nil {
		opt = DefaultOptions()
	}
	if err := opt.Validate(); err != nil {
		return nil, err
	}
	prober, err := NewHTTPProber(opt)
	if err != nil {
		return nil, err
	}
	return NewScannerWithProber(opt, prober)
}

// NewScannerWithProber creates a scanner around any Prober.
func NewScannerWithProber(opt *Options, prober Prober) (*Scanner, error) {
	if opt == nil {
		opt = DefaultOptions()
	}
	if err := opt.Validate(); err != nil {
		return nil, err
	}
	diag := opt.Diagnostics
	if diag == nil {
		diag = zap.NewNop()
	}
	return &Scanner{
		options:    opt,
		prober:     prober,
		classifier: NewClassifier(opt.Exclude...),
		diag:       diag,
	}, nil
}

type scanTask struct {
	port int
}

// Scan probes every port of the sequence and blocks until all dispatched
// probes have finished. Cancelling ctx stops dispatching; probes already
// running are left to complete or time out.
func (s *Scanner) Scan(ctx context.Context) (*Summary, error) {
	rnd := s.options.Rand
	if s.options.Randomize && rnd == nil {
		seed := uint64(time.Now().UnixNano())
		rnd = rand.New(rand.NewPCG(seed, seed>>1|1))
	}
	portIter, err := NewPortIterator(s.options.Range, s.options.Ports, s.options.Randomize, rnd)
	if err != nil {
		return nil, err
	}

	total := portIter.Total()
	atomic.StoreUint64(&s.total, uint64(total))
	atomic.StoreUint64(&s.currentProgress, 0)

	agg := NewAggregator(s.classifier)
	startTime := time.Now()
	gologger.Debug().Msgf("%-18s | %-9s | target=%s proxy=%s ports=%d workers=%d", "Proxy scan", "started",
		s.options.Target, s.options.Proxy, total, s.options.Concurrency)

	// probes outlive a cancelled scan; only the 3s timeout stops them
	probeCtx := context.WithoutCancel(ctx)

	var wg sync.WaitGroup
	pool, err := ants.NewPoolWithFunc(s.options.Concurrency, func(i interface{}) {
		defer wg.Done()
		task := i.(scanTask)
		s.runTask(probeCtx, agg, task.port)
	})
	if err != nil {
		return nil, err
	}
	defer pool.Release()

	interrupted := false
	for {
		select {
		case <-ctx.Done():
			interrupted = true
		default:
		}
		if interrupted {
			break
		}

		port, ok := portIter.Next()
		if !ok {
			break
		}

		wg.Add(1)
		if err := pool.Invoke(scanTask{port: port}); err != nil {
			wg.Done()
			gologger.Debug().Msgf("pool rejected port %d (%v), probing inline", port, err)
			s.runTask(probeCtx, agg, port)
		}
	}

	wg.Wait()

	summary := agg.Summary()
	summary.ID = xid.New().String()
	summary.Target = s.options.Target
	summary.Proxy = s.options.Proxy
	summary.Total = total
	summary.Interrupted = interrupted
	summary.Duration = time.Since(startTime)

	if interrupted {
		gologger.Warning().Msgf("%-18s | %-9s | probed=%d/%d partial results", "Proxy scan", "interrupted", summary.Probed, total)
	}
	gologger.Debug().Msgf("%-18s | %-9s | probed=%d interesting=%d duration=%s", "Proxy scan", "completed",
		summary.Probed, len(summary.Results), summary.Duration.Truncate(time.Millisecond))

	return summary, nil
}

func (s *Scanner) runTask(ctx context.Context, agg *Aggregator, port int) {
	if s.options.Delay > 0 {
		time.Sleep(s.options.Delay)
	}

	result := s.prober.Probe(ctx, port)
	result.Port = port
	agg.Add(result)
	atomic.AddUint64(&s.currentProgress, 1)

	if result.Failure != FailureNone {
		s.diag.Info("probe failed",
			zap.String("target", s.options.Target),
			zap.Int("port", port),
			zap.String("kind", result.Failure.String()),
			zap.Duration("duration", result.Duration),
			zap.Error(result.Err),
		)
	}

	if s.options.OnResult != nil {
		s.cbMu.Lock()
		s.options.OnResult(result)
		s.cbMu.Unlock()
	}
}

// Progress returns the number of finished probes and the sequence length
// of the current scan.
func (s *Scanner) Progress() (done, total uint64) {
	return atomic.LoadUint64(&s.currentProgress), atomic.LoadUint64(&s.total)
}

// Classifier exposes the classifier the scanner reports with.
func (s *Scanner) Classifier() *Classifier {
	return s.classifier
}
