package proc

import (
	"tasking/defs"
	"tasking/vm"
)

// Fork creates a child task that receives a deep clone of the parent's
// address space. cont is invoked twice, mirroring fork's two
// observable returns: once in the caller's own goroutine with ret =
// child.id (the parent branch), and once later, asynchronously in the
// child's own goroutine, with ret = 0 (the child branch, on first
// scheduling). Go has no call/cc or setjmp/longjmp equivalent; this
// continuation-callback shape is how this module delivers "fork
// returns twice" honestly instead of faking it with a single return
// value.
func Fork(parent *Task_t, cont func(ret int)) defs.Pid_t {
	return doSpawn(parent, true, 0, 0, cont)
}

// Clone creates a child task that shares the parent's address space.
// stackTop/stackOld are recorded for the caller's own userspace
// stack-relocation bookkeeping; this module's contract ends at
// preserving the register file.
func Clone(parent *Task_t, stackTop, stackOld uintptr, cont func(ret int)) defs.Pid_t {
	return doSpawn(parent, false, stackTop, stackOld, cont)
}

// doSpawn is the algorithm common to fork and clone, differing only in
// address-space policy (cow).
//
//go:noinline
func doSpawn(parent *Task_t, cow bool, stackTop, stackOld uintptr, cont func(ret int)) defs.Pid_t {
	// 1. plant TASK_MAGIC on the parent's stack; interrupt masking is
	// modeled implicitly -- this goroutine runs uninterrupted until it
	// blocks or returns, per the baton-channel discipline.
	parent.Image.PlantMagic()

	// 2. allocate the child: fresh kernel stack, inherited fds.
	child := spawnProcess(parent)
	child.Image.PlantMagic()
	child.OwnsAS = cow

	// 3. bind the selected address space.
	if cow {
		child.Thread.PageDirectory = vm.CloneDirectory(parent.Thread.PageDirectory)
		Forks.Inc()
	} else {
		child.Thread.PageDirectory = parent.Thread.PageDirectory
		child.CloneStackTop, child.CloneStackOld = stackTop, stackOld
		Clones.Inc()
	}

	// Kernel-stack copy with pointer fix-up, then the symmetric
	// esp/ebp relocation (stack.go).
	copyStack(child, parent)
	pTop, cTop := parent.Image.Top(), child.Image.Top()
	child.Thread.Esp = relocate(parent.Thread.Esp, pTop, cTop)
	child.Thread.Ebp = relocate(parent.Thread.Ebp, pTop, cTop)

	// 4. capture-resume: this call site is the resumption point
	// recorded for the child (the parent's own resumption point is
	// set independently, by whatever next calls SwitchTask).
	child.Thread.Eip = captureEip()

	child.entry = func() {
		// 5. child branch, first scheduling slice.
		assertf(child.Image.CheckMagic(), "TASK_MAGIC corrupted on child resume")
		cont(0)
	}

	makeProcessReady(child)

	// 5. parent branch.
	assertf(parent.Image.CheckMagic(), "TASK_MAGIC corrupted on parent resume")
	cont(int(child.Pid))
	return child.Pid
}
