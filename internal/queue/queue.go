package queue

import (
	"sync"

	"flex-design-backend/internal/logger"
)

type Job struct {
	Fn   func() error
	Errc chan error
}

// RequestQueueManager runs HTTP handler jobs on a fixed pool of workers so a
// burst of requests queues instead of fanning out to the database.
type RequestQueueManager struct {
	JobQueue   chan Job
	MaxWorkers int
	wg         sync.WaitGroup
	log        *logger.Logger
}

func NewRequestQueueManager(queueSize int, maxWorkers int, log *logger.Logger) *RequestQueueManager {
	if log == nil {
		log = logger.Nop()
	}
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	manager := &RequestQueueManager{
		JobQueue:   make(chan Job, queueSize),
		MaxWorkers: maxWorkers,
		log:        log.With("component", "RequestQueue"),
	}
	manager.startWorkers()
	return manager
}

func (rqm *RequestQueueManager) startWorkers() {
	for i := 0; i < rqm.MaxWorkers; i++ {
		rqm.wg.Add(1)
		go func(workerID int) {
			defer rqm.wg.Done()
			rqm.log.Debug("Worker started", "worker_id", workerID)
			for job := range rqm.JobQueue {
				err := rqm.run(job)
				if job.Errc != nil {
					job.Errc <- err
				}
			}
			rqm.log.Debug("Worker stopped", "worker_id", workerID)
		}(i)
	}
	rqm.log.Info("Request queue started", "workers", rqm.MaxWorkers, "queue_size", cap(rqm.JobQueue))
}

// run keeps a panicking handler from taking its worker down.
func (rqm *RequestQueueManager) run(job Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			rqm.log.Error("Job panicked", "panic", r)
			err = &PanicError{Value: r}
		}
	}()
	return job.Fn()
}

func (rqm *RequestQueueManager) EnqueueJob(job Job) {
	rqm.JobQueue <- job
}

func (rqm *RequestQueueManager) Shutdown() {
	close(rqm.JobQueue)
	rqm.wg.Wait()
	rqm.log.Info("Request queue stopped")
}

type PanicError struct {
	Value interface{}
}

func (e *PanicError) Error() string {
	return "job panicked"
}
