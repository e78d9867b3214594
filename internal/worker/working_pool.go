package worker

import (
	"context"
	"errors"
	"log"
	"sync"
)

// Job is a unit of background work such as a confirmation email or an event
// publish. Jobs must respect ctx cancellation.
type Job func(ctx context.Context) error

var (
	ErrPoolStopped   = errors.New("working pool stopped")
	ErrPoolQueueFull = errors.New("working pool queue full")
)

type WorkingPool struct {
	NumWorkers int
	jobChan    chan Job

	mu      sync.RWMutex
	stopped bool
}

func NewWorkingPool(numWorkers int, queueSize int) *WorkingPool {
	if numWorkers < 1 {
		numWorkers = 1
	}
	if queueSize < 0 {
		queueSize = 0
	}
	return &WorkingPool{
		NumWorkers: numWorkers,
		jobChan:    make(chan Job, queueSize),
	}
}

// SubmitJob enqueues without blocking the caller. Request handlers use it so a
// slow mail server never delays a response.
func (p *WorkingPool) SubmitJob(job Job) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.stopped {
		return ErrPoolStopped
	}

	select {
	case p.jobChan <- job:
		return nil
	default:
		return ErrPoolQueueFull
	}
}

func (p *WorkingPool) Start(ctx context.Context, managerWg *sync.WaitGroup) {
	defer managerWg.Done()

	var workerWg sync.WaitGroup
	for i := 0; i < p.NumWorkers; i++ {
		workerWg.Add(1)
		go p.worker(ctx, &workerWg, i+1)
	}

	<-ctx.Done()

	log.Println("[WorkingPool] Shutdown signaled. Closing job channel.")
	p.mu.Lock()
	p.stopped = true
	close(p.jobChan)
	p.mu.Unlock()

	workerWg.Wait()
	log.Println("[WorkingPool] All workers stopped.")
}

// worker drains queued jobs after shutdown is signaled; jobs see a cancelled
// ctx and are expected to return quickly.
func (p *WorkingPool) worker(ctx context.Context, wg *sync.WaitGroup, id int) {
	defer wg.Done()
	log.Printf("[WorkingPool-Worker %d] Started and waiting for jobs.\n", id)

	for job := range p.jobChan {
		p.safeExecution(ctx, job, id)
	}
	log.Printf("[WorkingPool-Worker %d] Job channel closed. Exiting.\n", id)
}

func (p *WorkingPool) safeExecution(ctx context.Context, job Job, workerID int) (err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[WorkingPool-Worker %d] FATAL: Panic recovered in job: %v\n", workerID, r)
		}
	}()

	err = job(ctx)
	if err != nil {
		log.Printf("[WorkingPool-Worker %d] Error executing job: %s.\n", workerID, err)
	}
	return err
}
