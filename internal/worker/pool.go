// Package worker provides the job dispatcher the reconciler uses to
// reprocess stalled video records with bounded parallelism.
package worker

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Job is a unit of reconciliation work.
type Job interface {
	Execute() error
	ID() string
}

// Worker pulls jobs from its own channel, registering that channel with
// the dispatcher's pool whenever it is idle.
type Worker struct {
	id         int
	workerPool chan chan Job
	jobChannel chan Job
	quit       chan struct{}
	wg         *sync.WaitGroup
	logger     *logrus.Logger
}

func newWorker(id int, workerPool chan chan Job, wg *sync.WaitGroup, logger *logrus.Logger) *Worker {
	return &Worker{
		id:         id,
		workerPool: workerPool,
		jobChannel: make(chan Job),
		quit:       make(chan struct{}),
		wg:         wg,
		logger:     logger,
	}
}

func (w *Worker) start() {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		for {
			w.workerPool <- w.jobChannel

			select {
			case job := <-w.jobChannel:
				log := w.logger.WithFields(logrus.Fields{"worker": w.id, "job_id": job.ID()})
				log.Info("Job started")
				if err := job.Execute(); err != nil {
					log.WithError(err).Error("Job failed")
				} else {
					log.Info("Job finished")
				}
			case <-w.quit:
				return
			}
		}
	}()
}

func (w *Worker) stop() {
	close(w.quit)
}

// Dispatcher fans submitted jobs out to a fixed pool of workers.
type Dispatcher struct {
	maxWorkers int
	workerPool chan chan Job
	jobQueue   chan Job
	workers    []*Worker
	wg         sync.WaitGroup
	quit       chan struct{}
	logger     *logrus.Logger
}

// NewDispatcher creates a dispatcher with maxWorkers workers and a
// buffered queue of jobQueueSize jobs.
func NewDispatcher(maxWorkers, jobQueueSize int, logger *logrus.Logger) *Dispatcher {
	return &Dispatcher{
		maxWorkers: maxWorkers,
		workerPool: make(chan chan Job, maxWorkers),
		jobQueue:   make(chan Job, jobQueueSize),
		workers:    make([]*Worker, 0, maxWorkers),
		quit:       make(chan struct{}),
		logger:     logger,
	}
}

// Run starts the workers and the dispatch loop.
func (d *Dispatcher) Run() {
	d.logger.WithField("workers", d.maxWorkers).Info("Dispatcher starting")
	for i := 1; i <= d.maxWorkers; i++ {
		w := newWorker(i, d.workerPool, &d.wg, d.logger)
		d.workers = append(d.workers, w)
		w.start()
	}
	go d.dispatch()
}

func (d *Dispatcher) dispatch() {
	for {
		select {
		case job := <-d.jobQueue:
			go func(job Job) {
				jobChannel := <-d.workerPool
				jobChannel <- job
			}(job)
		case <-d.quit:
			return
		}
	}
}

// Submit enqueues a job. It returns false when the queue is full.
func (d *Dispatcher) Submit(job Job) bool {
	select {
	case d.jobQueue <- job:
		return true
	default:
		d.logger.WithField("job_id", job.ID()).Warn("Job queue full, job dropped")
		return false
	}
}

// Stop drains the queue, shuts down the dispatch loop, signals all
// workers, and waits for in-flight jobs to finish. A job lost to the
// shutdown race is picked up by the next reconciliation sweep.
func (d *Dispatcher) Stop() {
	for len(d.jobQueue) > 0 {
		time.Sleep(50 * time.Millisecond)
	}
	close(d.quit)
	for _, w := range d.workers {
		w.stop()
	}
	d.wg.Wait()
	d.logger.Info("Dispatcher stopped")
}
