package chat

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	defaultQueueSize   = 128
	defaultMaxAttempts = 3
	defaultBaseDelay   = 250 * time.Millisecond
	defaultJobTimeout  = 15 * time.Second
)

// Job is one best-effort cloud write. Run may be retried, so it must be safe
// to execute more than once.
type Job struct {
	Name string
	Run  func(ctx context.Context) error
}

// Outbox executes best-effort cloud writes on a single background worker.
// Jobs run strictly in enqueue order, which keeps per-thread message appends
// arriving at the server in causal order. A job that keeps failing is logged
// and dropped: the cloud copy lags, local state stays authoritative, and the
// caller is never blocked or notified.
type Outbox struct {
	logger      *zap.Logger
	jobs        chan Job
	done        chan struct{}
	maxAttempts int
	baseDelay   time.Duration
	jobTimeout  time.Duration

	mu     sync.Mutex
	closed bool
}

// OutboxOption tweaks queue and retry behavior.
type OutboxOption func(*Outbox)

// WithRetry overrides the attempt cap and the base backoff delay.
func WithRetry(maxAttempts int, baseDelay time.Duration) OutboxOption {
	return func(o *Outbox) {
		if maxAttempts > 0 {
			o.maxAttempts = maxAttempts
		}
		if baseDelay >= 0 {
			o.baseDelay = baseDelay
		}
	}
}

// WithJobTimeout overrides the per-attempt timeout.
func WithJobTimeout(d time.Duration) OutboxOption {
	return func(o *Outbox) {
		if d > 0 {
			o.jobTimeout = d
		}
	}
}

// WithQueueSize overrides the queue capacity.
func WithQueueSize(n int) OutboxOption {
	return func(o *Outbox) {
		if n > 0 {
			o.jobs = make(chan Job, n)
		}
	}
}

// NewOutbox starts the background worker. A nil logger falls back to a no-op
// one.
func NewOutbox(logger *zap.Logger, opts ...OutboxOption) *Outbox {
	if logger == nil {
		logger = zap.NewNop()
	}
	o := &Outbox{
		logger:      logger,
		jobs:        make(chan Job, defaultQueueSize),
		done:        make(chan struct{}),
		maxAttempts: defaultMaxAttempts,
		baseDelay:   defaultBaseDelay,
		jobTimeout:  defaultJobTimeout,
	}
	for _, opt := range opts {
		opt(o)
	}
	go o.work()
	return o
}

// Enqueue schedules a job. It reports false when the outbox is closed or the
// queue is full; the job is then dropped, which best-effort semantics allow.
func (o *Outbox) Enqueue(job Job) bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return false
	}
	select {
	case o.jobs <- job:
		return true
	default:
		o.logger.Warn("outbox full, dropping job", zap.String("job", job.Name))
		return false
	}
}

// Close stops intake and blocks until every queued job has drained.
func (o *Outbox) Close() {
	o.mu.Lock()
	if !o.closed {
		o.closed = true
		close(o.jobs)
	}
	o.mu.Unlock()
	<-o.done
}

func (o *Outbox) work() {
	defer close(o.done)
	for job := range o.jobs {
		o.run(job)
	}
}

// run retries with exponential backoff until the job succeeds or the attempt
// cap is reached. Exhaustion is observable in the logs but nowhere else.
func (o *Outbox) run(job Job) {
	for attempt := 1; ; attempt++ {
		err := o.attempt(job)
		if err == nil {
			return
		}
		if attempt >= o.maxAttempts {
			o.logger.Warn("cloud write dropped after retries",
				zap.String("job", job.Name),
				zap.Int("attempts", attempt),
				zap.Error(err))
			return
		}
		o.logger.Debug("cloud write failed, retrying",
			zap.String("job", job.Name),
			zap.Int("attempt", attempt),
			zap.Error(err))
		time.Sleep(o.baseDelay << (attempt - 1))
	}
}

func (o *Outbox) attempt(job Job) error {
	ctx, cancel := context.WithTimeout(context.Background(), o.jobTimeout)
	defer cancel()
	return job.Run(ctx)
}
