package service

import (
	"sync"
	"time"
)

// Debouncer runs at most one pending task per key. Scheduling a key again cancels the
// pending task and restarts the delay.
type Debouncer struct {
	mu      sync.Mutex
	delay   time.Duration
	pending map[string]*pendingTask
}

type pendingTask struct {
	timer *time.Timer
	fn    func()
}

func NewDebouncer(delay time.Duration) *Debouncer {
	return &Debouncer{
		delay:   delay,
		pending: make(map[string]*pendingTask),
	}
}

// Schedule queues fn for key after the delay, replacing any task pending for key
func (d *Debouncer) Schedule(key string, fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if prev, ok := d.pending[key]; ok {
		prev.timer.Stop()
	}

	task := &pendingTask{fn: fn}
	task.timer = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		if d.pending[key] != task {
			// superseded after the timer already fired
			d.mu.Unlock()
			return
		}
		delete(d.pending, key)
		d.mu.Unlock()
		fn()
	})
	d.pending[key] = task
}

// Cancel drops the task pending for key, reporting whether one existed
func (d *Debouncer) Cancel(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	task, ok := d.pending[key]
	if !ok {
		return false
	}
	task.timer.Stop()
	delete(d.pending, key)
	return true
}

// pendingCount returns the number of scheduled tasks
func (d *Debouncer) pendingCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}

// Flush runs every pending task now and returns how many ran
func (d *Debouncer) Flush() int {
	d.mu.Lock()
	tasks := make([]*pendingTask, 0, len(d.pending))
	for key, task := range d.pending {
		// a timer that already fired finds itself removed and skips fn
		task.timer.Stop()
		tasks = append(tasks, task)
		delete(d.pending, key)
	}
	d.mu.Unlock()

	for _, task := range tasks {
		task.fn()
	}
	return len(tasks)
}
