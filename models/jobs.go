package models

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/golang/glog"
	"golang.org/x/sync/semaphore"

	e "github.com/microcosm-cc/avatars/errors"
)

// JobState is the lifecycle of a scheduled job
type JobState int32

// A job moves from Scheduled to Running to Completed. A job that is cancelled
// before it runs goes straight to Completed.
const (
	JobScheduled JobState = iota
	JobRunning
	JobCompleted
)

func (s JobState) String() string {
	switch s {
	case JobScheduled:
		return "scheduled"
	case JobRunning:
		return "running"
	case JobCompleted:
		return "completed"
	}
	return "unknown"
}

// SchedulingRule is a mutual exclusion token. Jobs scheduled with the same
// rule never run at the same time; jobs with different rules never conflict.
type SchedulingRule struct {
	sem *semaphore.Weighted
}

// NewSchedulingRule returns a rule that no job holds
func NewSchedulingRule() *SchedulingRule {
	return &SchedulingRule{sem: semaphore.NewWeighted(1)}
}

// Acquire blocks until the rule is held or ctx is done
func (r *SchedulingRule) Acquire(ctx context.Context) error {
	return r.sem.Acquire(ctx, 1)
}

// Release gives up a rule obtained by Acquire
func (r *SchedulingRule) Release() {
	r.sem.Release(1)
}

// Job is a unit of background work. ctx is cancelled when the scheduler is
// closed.
type Job func(ctx context.Context)

// Task is a Job that returns a continuation. The continuation, if not nil,
// runs on the same goroutine once the rule and the pool slot have been
// released, so it may schedule or run work under the same rule.
type Task func(ctx context.Context) func()

// JobHandle reports the state of one scheduled job
type JobHandle struct {
	Name  string
	state int32
	done  chan struct{}
}

// State returns the current state of the job
func (j *JobHandle) State() JobState {
	return JobState(atomic.LoadInt32(&j.state))
}

// Done is closed once the job has completed
func (j *JobHandle) Done() <-chan struct{} {
	return j.done
}

func (j *JobHandle) setState(s JobState) {
	atomic.StoreInt32(&j.state, int32(s))
}

// Scheduler runs jobs in the background on a bounded pool of goroutines.
// Scheduling never blocks the caller. A job starts once it holds its rule and
// a pool slot; no ordering between waiting jobs is promised.
type Scheduler struct {
	ctx    context.Context
	cancel context.CancelFunc
	pool   *semaphore.Weighted
	wg     sync.WaitGroup
}

// NewScheduler returns a scheduler running at most workers jobs at once. A
// value below 1 means one worker per CPU.
func NewScheduler(workers int) *Scheduler {
	if workers < 1 {
		workers = runtime.NumCPU()
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		ctx:    ctx,
		cancel: cancel,
		pool:   semaphore.NewWeighted(int64(workers)),
	}
}

// Schedule queues job under rule. cancelled, if not nil, is called instead of
// the job when the scheduler is closed before the job could start.
func (s *Scheduler) Schedule(
	name string,
	rule *SchedulingRule,
	job Job,
	cancelled func(err error),
) *JobHandle {
	return s.ScheduleTask(
		name,
		rule,
		func(ctx context.Context) func() {
			job(ctx)
			return nil
		},
		cancelled,
	)
}

// ScheduleTask is Schedule for a task whose continuation runs after the rule
// is released. The job is only completed once the continuation has returned.
func (s *Scheduler) ScheduleTask(
	name string,
	rule *SchedulingRule,
	task Task,
	cancelled func(err error),
) *JobHandle {
	handle := &JobHandle{Name: name, done: make(chan struct{})}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer close(handle.done)
		defer handle.setState(JobCompleted)

		if err := s.acquire(rule); err != nil {
			if glog.V(2) {
				glog.Infof("Job %q cancelled before it ran", name)
			}
			if cancelled != nil {
				cancelled(e.Wrap("models.Scheduler.Schedule", e.Cancelled, err))
			}
			return
		}

		handle.setState(JobRunning)
		then := s.run(name, task)
		s.release(rule)

		if then != nil {
			s.runContinuation(name, then)
		}
	}()

	return handle
}

func (s *Scheduler) acquire(rule *SchedulingRule) error {
	if err := s.ctx.Err(); err != nil {
		return err
	}

	// The rule is taken before the pool slot so that jobs waiting on a busy
	// rule do not occupy workers
	if rule != nil {
		if err := rule.Acquire(s.ctx); err != nil {
			return err
		}
	}

	if err := s.pool.Acquire(s.ctx, 1); err != nil {
		if rule != nil {
			rule.Release()
		}
		return err
	}

	if err := s.ctx.Err(); err != nil {
		s.release(rule)
		return err
	}

	return nil
}

func (s *Scheduler) release(rule *SchedulingRule) {
	s.pool.Release(1)
	if rule != nil {
		rule.Release()
	}
}

func (s *Scheduler) run(name string, task Task) (then func()) {
	defer func() {
		if r := recover(); r != nil {
			glog.Errorf("Job %q panicked: %v", name, r)
			then = nil
		}
	}()

	if glog.V(2) {
		glog.Infof("Running job %q", name)
	}
	return task(s.ctx)
}

func (s *Scheduler) runContinuation(name string, then func()) {
	defer func() {
		if r := recover(); r != nil {
			glog.Errorf("Continuation of job %q panicked: %v", name, r)
		}
	}()

	then()
}

// Wait blocks until every job scheduled so far has completed
func (s *Scheduler) Wait() {
	s.wg.Wait()
}

// Close cancels jobs that have not started and signals running jobs to stop,
// then waits for them
func (s *Scheduler) Close() {
	s.cancel()
	s.wg.Wait()
}

// Closed returns true once Close has been called
func (s *Scheduler) Closed() bool {
	return s.ctx.Err() != nil
}
