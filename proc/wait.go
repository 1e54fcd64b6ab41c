package proc

import (
	"sync"

	"tasking/defs"
)

// WaitQueue_t is the set of tasks blocked awaiting a task's
// termination. Waiters are recorded by pid rather than by task
// pointer, resolving the cyclic reference between task and wait-queue
// entries as a weak back-reference: a waiter's ownership lives in the
// scheduler's ready/blocked set, not here.
type WaitQueue_t struct {
	sync.Mutex
	waiters []defs.Pid_t
}

// Wait registers self as a waiter and blocks until Wakeup moves it
// back to the ready set.
func (w *WaitQueue_t) Wait(self *Task_t) {
	w.Lock()
	w.waiters = append(w.waiters, self.Pid)
	w.Unlock()
	SwitchTask(false)
}

// Wakeup moves every waiter to the ready set, handing each one rusage
// (the exiting task's final accounting snapshot) to read once woken.
// Every waiter is signalled before any further scheduling can occur,
// because Wakeup only returns after every makeProcessReady call has
// completed.
func (w *WaitQueue_t) Wakeup(rusage []uint8) {
	w.Lock()
	ws := w.waiters
	w.waiters = nil
	w.Unlock()
	for _, pid := range ws {
		if t, ok := GetTask(pid); ok {
			t.WokeRusage = rusage
			makeProcessReady(t)
		}
	}
}

func (w *WaitQueue_t) clear() {
	w.Lock()
	w.waiters = nil
	w.Unlock()
}
