package proc

import (
	"fmt"

	"tasking/caller"
)

// assertf is this module's STOP: a fatal invariant violation halts
// the simulated kernel rather than attempting recovery -- a null
// current_process inside fork, a bad TASK_MAGIC after resume, or a
// task-switch resume target outside kernel text all imply memory
// corruption and cannot be recovered from. It prints a caller chain,
// matching the teacher's habit of dumping context before a fatal
// panic.
func assertf(cond bool, format string, args ...interface{}) {
	if cond {
		return
	}
	caller.Callerdump(2)
	panic(fmt.Sprintf(format, args...))
}
