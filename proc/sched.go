package proc

import (
	"sync"

	"tasking/defs"
	"tasking/limits"
	"tasking/stats"
)

// resumeMagic is the sentinel value a task's capture-resume call
// observes on the resumption path, distinguishing it from the live
// first return.
const resumeMagic = 0x10000

var (
	schedMu sync.Mutex
	tasks   = map[defs.Pid_t]*Task_t{}
	pidNext defs.Pid_t
	readyQ  []defs.Pid_t
	reapQ   []defs.Pid_t
	current *Task_t
)

// Scheduler counters, exported via Profile (profile.go) -- this
// module's one wiring of google/pprof.
var (
	Forks    stats.Counter_t
	Clones   stats.Counter_t
	Switches stats.Counter_t
	Reaps    stats.Counter_t
)

func allocPid() defs.Pid_t {
	schedMu.Lock()
	defer schedMu.Unlock()
	p := pidNext
	pidNext++
	return p
}

func registerTask(t *Task_t) {
	schedMu.Lock()
	tasks[t.Pid] = t
	schedMu.Unlock()
}

// GetTask looks up a task by pid.
func GetTask(pid defs.Pid_t) (*Task_t, bool) {
	schedMu.Lock()
	defer schedMu.Unlock()
	t, ok := tasks[pid]
	return t, ok
}

// CurrentTask returns current_process.
func CurrentTask() *Task_t {
	schedMu.Lock()
	defer schedMu.Unlock()
	return current
}

// makeProcessReady inserts t into the ready set.
func makeProcessReady(t *Task_t) {
	t.setState(Ready)
	schedMu.Lock()
	readyQ = append(readyQ, t.Pid)
	schedMu.Unlock()
}

func nextReadyProcess() (*Task_t, bool) {
	schedMu.Lock()
	defer schedMu.Unlock()
	if len(readyQ) == 0 {
		return nil, false
	}
	pid := readyQ[0]
	readyQ = readyQ[1:]
	return tasks[pid], true
}

func processAvailable() bool {
	schedMu.Lock()
	defer schedMu.Unlock()
	return len(readyQ) > 0
}

func makeProcessReapable(t *Task_t) {
	t.setState(Reapable)
	schedMu.Lock()
	reapQ = append(reapQ, t.Pid)
	schedMu.Unlock()
}

func nextReapableProcess() (*Task_t, bool) {
	schedMu.Lock()
	defer schedMu.Unlock()
	if len(reapQ) == 0 {
		return nil, false
	}
	pid := reapQ[0]
	reapQ = reapQ[1:]
	return tasks[pid], true
}

func shouldReap() bool {
	schedMu.Lock()
	defer schedMu.Unlock()
	return len(reapQ) > 0
}

// TaskingInstall bootstraps the scheduler: spawns an init task and
// makes it current_process. Post-condition: the ready set is empty; a
// driver may now call SwitchTask(true) repeatedly to model the timer
// IRQ driving the scheduler.
//
//go:noinline
func TaskingInstall(initEntry func()) *Task_t {
	schedMu.Lock()
	already := current != nil
	schedMu.Unlock()
	assertf(!already, "tasking_install: already installed")

	init := spawnInit(initEntry)
	init.setState(Running)
	init.Thread.Eip = captureEip()
	init.started = true
	init.scheduledAt = init.Acct.Now()

	schedMu.Lock()
	current = init
	schedMu.Unlock()

	go runTask(init)
	return init
}

func runTask(t *Task_t) {
	if t.entry != nil {
		t.entry()
	}
}

// SwitchTask is the rescheduling entry point. The timer IRQ is
// modeled as the currently running task's own goroutine calling
// SwitchTask(true) -- faithful to a real timer handler, which runs on
// the interrupted task's own kernel stack. A voluntary yield (blocking
// on a wait queue) calls SwitchTask(false).
//
// Tasking must already be installed and at least one task must be
// ready, otherwise this returns without switching.
//
//go:noinline
func SwitchTask(reschedule bool) {
	self := CurrentTask()
	if self == nil || !processAvailable() {
		return
	}

	// snapshot eip only; Thread.Esp and Thread.Ebp are not updated
	// here. This module's capture-resume equivalent is captureEip
	// plus the channel receive below.
	self.Thread.Eip = captureEip()
	accountElapsed(self)

	// store the snapshot; reschedule or block.
	if reschedule {
		makeProcessReady(self)
	} else {
		self.setState(Blocked)
	}

	switchNext()

	// resumed: the RESUME_MAGIC path.
	v := <-self.resume
	assertf(v == resumeMagic, "switch_task: resumed without RESUME_MAGIC")

	drainReapList()
}

// switchNext selects the next ready task, validates its eip lies
// within kernel text, installs it as current_process, and hands it
// the baton -- either by starting its goroutine (first scheduling
// slice, the "child branch") or by sending resumeMagic on its resume
// channel (every later resume).
func switchNext() {
	t, ok := nextReadyProcess()
	if !ok {
		return
	}
	assertf(validEip(t.Thread.Eip), "switch_next: eip outside kernel text")

	t.setState(Running)
	t.scheduledAt = t.Acct.Now()
	schedMu.Lock()
	current = t
	schedMu.Unlock()
	Switches.Inc()

	if !t.started {
		t.started = true
		go runTask(t)
		return
	}
	t.resume <- resumeMagic
}

// resetScheduler clears all scheduler-global state. Global mutable
// state is an irreducible feature of a kernel with one CPU, but a
// single test binary boots many independent scenarios in one process,
// so tests call this between them.
func resetScheduler() {
	schedMu.Lock()
	tasks = map[defs.Pid_t]*Task_t{}
	pidNext = 0
	readyQ = nil
	reapQ = nil
	current = nil
	schedMu.Unlock()
	Forks, Clones, Switches, Reaps = 0, 0, 0, 0
	limits.Syslimit.Sysprocs = 1 << 14
}

func drainReapList() {
	for shouldReap() {
		t, ok := nextReapableProcess()
		if !ok {
			return
		}
		ReapProcess(t)
	}
}

// accountElapsed tallies the wall time since t was last installed as
// current_process. Time is attributed to user accounting once t has
// completed a RingEnter descent, and to system accounting otherwise --
// this simulation has no actual user-mode execution to time directly,
// so it treats every slice after the one-way descent as user time and
// every slice before it as kernel time.
func accountElapsed(t *Task_t) {
	if t.InUser {
		t.Acct.Utadd(t.Acct.Now() - t.scheduledAt)
		return
	}
	t.Acct.Finish(t.scheduledAt)
}
