package bot

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	limiterSweepInterval  = 10 * time.Minute
	proposalSweepInterval = time.Minute
	proofSweepInterval    = 5 * time.Minute
)

// Sweeper drops expired in-memory state and reports how much it removed.
type Sweeper interface {
	Sweep() int
}

type sweepFunc func() int

func (f sweepFunc) Sweep() int { return f() }

type sweepTask struct {
	name     string
	interval time.Duration
	sweeper  Sweeper
}

// Scheduler runs the periodic cleanup of rate-limit windows, delete proposals and proof requests.
type Scheduler struct {
	tasks []sweepTask
	done  chan struct{}
	once  sync.Once
	wg    sync.WaitGroup
}

func NewScheduler(b *Bot) *Scheduler {
	return &Scheduler{
		tasks: []sweepTask{
			{"rate limiter", limiterSweepInterval, b.Service.Limiter()},
			{"delete proposals", proposalSweepInterval, sweepFunc(b.Service.SweepProposals)},
			{"proof requests", proofSweepInterval, b.Proofs},
		},
		done: make(chan struct{}),
	}
}

// Start begins all scheduled tasks.
func (s *Scheduler) Start() {
	for _, t := range s.tasks {
		s.wg.Add(1)
		go s.run(t)
	}
}

func (s *Scheduler) run(t sweepTask) {
	defer s.wg.Done()
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if n := t.sweeper.Sweep(); n > 0 {
				log.Debug().Str("task", t.name).Int("removed", n).Msg("sweep finished")
			}
		case <-s.done:
			return
		}
	}
}

// Stop terminates all scheduled tasks and waits for them to return.
func (s *Scheduler) Stop() {
	s.once.Do(func() { close(s.done) })
	s.wg.Wait()
}
