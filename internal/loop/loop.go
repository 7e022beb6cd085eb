// Package loop provides the single-goroutine task queue that store code runs on.
//
// Stores never block. They hand slow work (network queries) to Go, which runs
// it on its own goroutine and posts the returned continuation back to the
// loop. Everything that touches store state or the document therefore runs on
// one goroutine, in the order continuations arrive.
package loop

import "sync"

// Loop schedules work onto the owning goroutine.
type Loop interface {
	// Post queues task to run on the loop.
	Post(task func())
	// Go runs work off the loop. A non-nil continuation returned by work is
	// posted back to the loop.
	Go(work func() func())
}

// Chan is a Loop whose tasks are drained by the host (the terminal UI) from
// its own update goroutine.
type Chan struct {
	mu     sync.Mutex
	queue  []func()
	notify chan struct{}
}

// NewChan returns an empty queue.
func NewChan() *Chan {
	return &Chan{notify: make(chan struct{}, 1)}
}

// Post queues task. It never blocks, so it is safe to call from the loop itself.
func (c *Chan) Post(task func()) {
	if task == nil {
		return
	}
	c.mu.Lock()
	c.queue = append(c.queue, task)
	c.mu.Unlock()

	select {
	case c.notify <- struct{}{}:
	default:
	}
}

// Go runs work on a new goroutine and posts its continuation.
func (c *Chan) Go(work func() func()) {
	go func() {
		if next := work(); next != nil {
			c.Post(next)
		}
	}()
}

// Ready is signalled whenever tasks have been posted since the last Drain.
func (c *Chan) Ready() <-chan struct{} {
	return c.notify
}

// Drain runs every queued task, including tasks posted by the tasks it runs,
// and returns how many ran. It must be called from the loop goroutine.
func (c *Chan) Drain() int {
	ran := 0
	for {
		c.mu.Lock()
		batch := c.queue
		c.queue = nil
		c.mu.Unlock()

		if len(batch) == 0 {
			return ran
		}
		for _, task := range batch {
			task()
			ran++
		}
	}
}

// Manual is a Loop for tests. Work runs inline; continuations wait in a queue
// until the test runs them, in any order it likes.
type Manual struct {
	queue []func()
}

// Post queues task.
func (m *Manual) Post(task func()) {
	if task != nil {
		m.queue = append(m.queue, task)
	}
}

// Go runs work immediately and queues the continuation.
func (m *Manual) Go(work func() func()) {
	m.Post(work())
}

// Pending reports how many continuations are queued.
func (m *Manual) Pending() int {
	return len(m.queue)
}

// RunAt runs and removes the i-th queued continuation. It panics when i is
// out of range.
func (m *Manual) RunAt(i int) {
	task := m.queue[i]
	m.queue = append(m.queue[:i:i], m.queue[i+1:]...)
	task()
}

// Flush runs queued continuations until the queue is empty.
func (m *Manual) Flush() {
	for len(m.queue) > 0 {
		m.RunAt(0)
	}
}
