package async

import "sync"

// Scheduler runs the remote half of a controller operation. The task calls
// the collaborator and then hands the outcome back to the controller.
type Scheduler interface {
	Go(task func())
}

// GoScheduler runs each task on its own goroutine.
type GoScheduler struct{}

// Go starts task in a new goroutine.
func (GoScheduler) Go(task func()) {
	go task()
}

// ManualScheduler queues tasks until they are run explicitly. It makes the
// interleaving of issue and completion deterministic in tests.
type ManualScheduler struct {
	mu    sync.Mutex
	tasks []func()
}

// Go queues task.
func (s *ManualScheduler) Go(task func()) {
	s.mu.Lock()
	s.tasks = append(s.tasks, task)
	s.mu.Unlock()
}

// Pending returns the number of queued tasks.
func (s *ManualScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

// RunNext runs the oldest queued task. It reports false if the queue was
// empty.
func (s *ManualScheduler) RunNext() bool {
	s.mu.Lock()
	if len(s.tasks) == 0 {
		s.mu.Unlock()
		return false
	}
	task := s.tasks[0]
	s.tasks = s.tasks[1:]
	s.mu.Unlock()

	task()
	return true
}

// RunAll runs queued tasks, including ones queued while running, until the
// queue is empty.
func (s *ManualScheduler) RunAll() {
	for s.RunNext() {
	}
}
