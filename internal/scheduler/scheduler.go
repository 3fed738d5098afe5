package scheduler

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync/atomic"
	"time"

	"AutoCompound/internal/config"
	"AutoCompound/internal/model"
	"AutoCompound/internal/notifier"

	"github.com/ethereum/go-ethereum/common"
	"github.com/robfig/cron/v3"
)

// CycleRunner runs one reinvestment cycle.
type CycleRunner interface {
	RunCycle(ctx context.Context) *model.CycleReport
	Account() common.Address
}

// Scheduler triggers reinvestment cycles on a fixed period.
type Scheduler struct {
	Cron     *cron.Cron
	Runner   CycleRunner
	Notifier notifier.Notifier
	Policy   string
	Ctx      context.Context

	interval time.Duration
	job      cron.Job // registered job with the overlap policy applied
	running  atomic.Int32
}

// NewScheduler creates a new Scheduler. With config.OverlapSkip a tick that
// fires while the previous cycle is still running is dropped; with
// config.OverlapAllow cycles may run concurrently.
func NewScheduler(ctx context.Context, runner CycleRunner, n notifier.Notifier, policy string) *Scheduler {
	var opts []cron.Option
	if policy == config.OverlapSkip {
		logger := cron.PrintfLogger(log.New(os.Stderr, "cron: ", log.LstdFlags))
		opts = append(opts, cron.WithChain(cron.SkipIfStillRunning(logger)))
	}
	return &Scheduler{
		Cron:     cron.New(opts...),
		Runner:   runner,
		Notifier: n,
		Policy:   policy,
		Ctx:      ctx,
	}
}

// Register schedules the reinvestment cycle every interval, counted from Start.
func (s *Scheduler) Register(interval time.Duration) error {
	if interval < time.Second {
		return fmt.Errorf("interval %v is shorter than one second", interval)
	}
	id := s.Cron.Schedule(cron.Every(interval), cron.FuncJob(s.cycleTask))
	s.job = s.Cron.Entry(id).WrappedJob
	s.interval = interval
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Printf("[INFO] scheduler started, next cycle in %s", s.interval)
}

// Stop stops the scheduler and waits for running cycles to return.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Println("[INFO] scheduler stopped")
}

// RunNow executes a cycle synchronously (startup run and manual trigger).
func (s *Scheduler) RunNow() *model.CycleReport {
	return s.cycle()
}

func (s *Scheduler) cycleTask() {
	s.cycle()
}

func (s *Scheduler) cycle() *model.CycleReport {
	s.running.Add(1)
	defer s.running.Add(-1)
	log.Println("[INFO] running reinvest cycle")
	report := s.Runner.RunCycle(s.Ctx)
	log.Printf("[INFO] cycle finished in %s: %d sent, %d skipped, %d failed",
		report.Duration().Round(time.Millisecond), report.Sent(), report.Skipped(), report.Failed())
	s.trySend(notifier.FormatCycleReport(report))
	return report
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(command string) string {
	switch command {
	case "/run":
		if s.Policy == config.OverlapSkip && s.running.Load() > 0 {
			return "A reinvest cycle is already running, /run skipped."
		}
		s.trigger()
		return ""
	case "/status":
		return notifier.FormatStatus(s.Status())
	default:
		return "Commands:\n• /run: run a reinvest cycle now\n• /status: show bot status"
	}
}

// trigger runs a cycle through the registered job so manual runs follow the
// same overlap policy as scheduled ones.
func (s *Scheduler) trigger() {
	if s.job == nil {
		s.cycle()
		return
	}
	s.job.Run()
}

// Status summarises the scheduler for display.
func (s *Scheduler) Status() notifier.Status {
	st := notifier.Status{
		Account:  s.Runner.Account().Hex(),
		Interval: s.interval,
		Policy:   s.Policy,
	}
	if entries := s.Cron.Entries(); len(entries) > 0 {
		st.NextRun = entries[0].Next
	}
	return st
}

func (s *Scheduler) trySend(text string) {
	if err := s.Notifier.Send(text); err != nil {
		log.Printf("[ERROR] send notification: %v", err)
	}
}
