package searcher

// Scheduler runs deferred work on the host's event loop. Implementations must
// run tasks on the same goroutine that calls Engine.Search, one at a time.
type Scheduler interface {
	Schedule(task func())
}

// SchedulerFunc adapts a function to the Scheduler interface
type SchedulerFunc func(task func())

// Schedule calls f(task)
func (f SchedulerFunc) Schedule(task func()) {
	f(task)
}

// QueueScheduler is a FIFO task queue drained explicitly by its owner.
// It suits batch callers and tests, where the "event loop" is a plain loop.
type QueueScheduler struct {
	tasks []func()
}

// Schedule appends task to the queue
func (q *QueueScheduler) Schedule(task func()) {
	q.tasks = append(q.tasks, task)
}

// Pending returns the number of queued tasks
func (q *QueueScheduler) Pending() int {
	return len(q.tasks)
}

// RunNext runs the oldest queued task. It returns false if the queue was empty.
func (q *QueueScheduler) RunNext() bool {
	if len(q.tasks) == 0 {
		return false
	}
	task := q.tasks[0]
	q.tasks[0] = nil
	q.tasks = q.tasks[1:]
	task()
	return true
}

// Drain runs tasks until the queue is empty, including tasks scheduled by
// tasks, and returns how many ran.
func (q *QueueScheduler) Drain() int {
	n := 0
	for q.RunNext() {
		n++
	}
	return n
}
