package proc

import (
	"tasking/accnt"
	"tasking/fd"
	"tasking/limits"
	"tasking/vm"
)

// spawnProcess returns a fresh task whose Ppid is parent's pid and
// whose fd table is a clone of parent's, with a freshly allocated
// (zeroed) kernel stack region. Task_t carries no credentials, so none
// are inherited; the parent's stack contents are copied in later by
// doSpawn.
func spawnProcess(parent *Task_t) *Task_t {
	assertf(limits.Syslimit.Sysprocs.Take(), "spawn_process: out of process slots")
	t := &Task_t{
		Pid:   allocPid(),
		Ppid:  parent.Pid,
		Image: newImage(),
		Fds:   parent.Fds.Clone(),
		Acct:  &accnt.Accnt_t{},
		// Buffered by one: switchNext's resume send completes without
		// waiting for the resumed task's goroutine to reach its
		// receive in SwitchTask.
		resume: make(chan int, 1),
	}
	registerTask(t)
	return t
}

// spawnInit returns the first task, with no parent to inherit from.
func spawnInit(entry func()) *Task_t {
	assertf(limits.Syslimit.Sysprocs.Take(), "spawn_init: out of process slots")
	t := &Task_t{
		Pid:    allocPid(),
		Image:  newImage(),
		Fds:    fd.NewTable(),
		Acct:   &accnt.Accnt_t{},
		OwnsAS: true,
		resume: make(chan int, 1),
		entry:  entry,
	}
	t.Image.PlantMagic()
	t.Thread.PageDirectory = vm.NewAddressSpace()
	registerTask(t)
	return t
}

// TaskExit marks the task finished, wakes every waiter on its wait
// queue (handing each one this task's final rusage snapshot), marks it
// reapable, then yields via switch_next without saving context. This
// task is never resumed; once switch_next has handed the baton
// elsewhere, this goroutine simply returns and exits.
func TaskExit(retval int) {
	self := CurrentTask()
	assertf(self != nil, "task_exit: no current process")

	accountElapsed(self)

	self.mu.Lock()
	self.state = Finished
	self.exitCode = retval
	self.mu.Unlock()
	self.FinalRusage = self.Acct.Fetch()

	self.WaitQ.Wakeup(self.FinalRusage)
	makeProcessReapable(self)

	switchNext()
}

// KExit is the kernel-thread-facing alias of task_exit, exposed
// alongside it for callers operating outside a task's own syscall
// path.
func KExit(code int) {
	TaskExit(code)
}

// ReapProcess frees, in order, the wait-queue list, the kernel stack
// region, the page directory (via free_directory -- skipped for
// clone()'d children that never owned their directory), and the
// file-descriptor table storage. It always runs from some other
// task's resumed context: drainReapList is only ever invoked from
// inside SwitchTask after this task's own goroutine has already
// yielded for good.
func ReapProcess(t *Task_t) {
	assertf(CurrentTask() != t, "reap_process: attempted self-reap")

	t.WaitQ.clear()
	t.Image.Stack = nil
	if t.OwnsAS {
		vm.FreeDirectory(t.Thread.PageDirectory)
	}
	t.Thread.PageDirectory = nil
	t.Fds.CloseAll()
	t.Fds = nil

	schedMu.Lock()
	delete(tasks, t.Pid)
	schedMu.Unlock()

	Reaps.Inc()
	limits.Syslimit.Sysprocs.Give()
}
