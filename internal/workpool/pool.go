// Package workpool provides a fixed-size pool of worker goroutines fed from a
// FIFO task queue.
package workpool

import (
	"errors"
	"io"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"
	"github.com/sourcegraph/conc/panics"
)

// ErrClosed is returned by Submit once Close has been called.
var ErrClosed = errors.New("workpool: pool is closed")

// Task is a unit of work. Results are communicated through the closure.
type Task func()

// State is the lifecycle state of a Pool.
type State int32

const (
	// Running accepts and executes tasks.
	Running State = iota
	// ShuttingDown rejects new tasks and drains the queue.
	ShuttingDown
	// Terminated means every worker has exited.
	Terminated
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case ShuttingDown:
		return "shutting down"
	case Terminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// Option configures a Pool.
type Option func(*Pool)

// WithLogger sets the logger used to report recovered task panics.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(p *Pool) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// Pool runs submitted tasks on a fixed number of goroutines.
// Tasks are started in submission order, each by exactly one worker.
type Pool struct {
	mu    sync.Mutex
	cond  *sync.Cond
	queue []Task
	state State

	size      int
	workers   sync.WaitGroup
	recovered atomic.Int64
	logger    logrus.FieldLogger
}

// New starts a pool with size workers. A size below 1 is raised to 1.
func New(size int, opts ...Option) *Pool {
	if size < 1 {
		size = 1
	}

	discard := logrus.New()
	discard.SetOutput(io.Discard)

	p := &Pool{
		size:   size,
		logger: discard,
	}
	p.cond = sync.NewCond(&p.mu)

	for _, opt := range opts {
		opt(p)
	}

	p.workers.Add(size)

	for id := range size {
		go p.work(id)
	}

	return p
}

// Size returns the number of workers.
func (p *Pool) Size() int {
	return p.size
}

// State returns the current lifecycle state.
func (p *Pool) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.state
}

// Recovered returns how many tasks panicked so far.
func (p *Pool) Recovered() int64 {
	return p.recovered.Load()
}

// Submit enqueues task and wakes one idle worker.
func (p *Pool) Submit(task Task) error {
	if task == nil {
		return errors.New("workpool: nil task")
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state != Running {
		return ErrClosed
	}

	p.queue = append(p.queue, task)
	p.cond.Signal()

	return nil
}

// Close stops accepting tasks, lets the workers drain everything already
// queued, and waits for all of them to exit. It is safe to call more than
// once and from several goroutines, but not from inside a task.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.state == Running {
		p.state = ShuttingDown
		p.cond.Broadcast()
	}
	p.mu.Unlock()

	p.workers.Wait()

	p.mu.Lock()
	p.state = Terminated
	p.mu.Unlock()
}

func (p *Pool) work(id int) {
	defer p.workers.Done()

	for {
		p.mu.Lock()
		for len(p.queue) == 0 && p.state == Running {
			p.cond.Wait()
		}

		if len(p.queue) == 0 {
			p.mu.Unlock()

			return
		}

		task := p.queue[0]
		p.queue[0] = nil
		p.queue = p.queue[1:]
		p.mu.Unlock()

		p.run(id, task)
	}
}

// run executes task, keeping the worker alive if it panics.
func (p *Pool) run(id int, task Task) {
	var catcher panics.Catcher

	catcher.Try(task)

	if r := catcher.Recovered(); r != nil {
		p.recovered.Add(1)
		p.logger.WithFields(logrus.Fields{
			"worker": id,
			"panic":  r.Value,
		}).Warn("recovered panic in pool task")
	}
}
