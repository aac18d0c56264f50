package wire

import (
	"github.com/rs/zerolog/log"
	tomb "gopkg.in/tomb.v2"
)

const taskChanSize = 100

// WorkerFunction is one unit of connection-handling work. Adapted from the
// teacher's self-contained internal/worker.go (the copy with no dangling
// import, unlike internal/net/server.go's reference to a missing
// fenrir/internal/utils package).
type WorkerFunction func(t *tomb.Tomb, task any) error

type WorkerPool struct {
	n     int
	tasks chan any
	work  WorkerFunction
}

func NewWorkerPool(size int) WorkerPool {
	return WorkerPool{tasks: make(chan any, taskChanSize), n: size}
}

func (pool *WorkerPool) AddTask(task any) {
	pool.tasks <- task
}

// Setup keeps pool.n workers alive under t until t is dying.
func (pool *WorkerPool) Setup(t *tomb.Tomb, work WorkerFunction) {
	pool.work = work
	log.Info().Int("workers", pool.n).Msg("starting worker pool")
	for i := 0; i < pool.n; i++ {
		t.Go(func() error {
			return pool.run(t)
		})
	}
}

func (pool *WorkerPool) run(t *tomb.Tomb) error {
	for {
		select {
		case <-t.Dying():
			return nil
		case task := <-pool.tasks:
			if err := pool.work(t, task); err != nil {
				log.Error().Err(err).Msg("worker exiting")
				return err
			}
		}
	}
}
