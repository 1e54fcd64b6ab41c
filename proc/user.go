package proc

import "tasking/util"

// ArgvMagic is the recognition magic (0xDECADE21) pushed onto the user
// stack frame by RingEnter.
const ArgvMagic = 0xDECADE21

// ArgvFrame is the four-word frame RingEnter builds atop the user
// stack: (0, argv, argc, ArgvMagic).
type ArgvFrame struct {
	Zero  uintptr
	Argv  uintptr
	Argc  int
	Magic uint32
}

// RingEnter performs a one-way descent from supervisor to user mode.
// This module has no MMU and no interrupt-return -- ring 3 does not
// exist here -- so RingEnter's job is the part of the contract this
// module actually owns: writing the argv frame into the task's own
// address space at the top of the user stack, and recording the entry
// state a real descent would restore from. The segment loads and the
// interrupt-return itself are an external collaborator, fixed at that
// contract and out of this module's scope.
func RingEnter(t *Task_t, entry, argv, userStackTop uintptr, argc int) ArgvFrame {
	t.UserEntry = entry
	t.UserStack = userStackTop - 16
	frame := ArgvFrame{Zero: 0, Argv: argv, Argc: argc, Magic: ArgvMagic}

	buf := make([]uint8, 16)
	util.Writen(buf, 4, 0, int(frame.Zero))
	util.Writen(buf, 4, 4, int(frame.Argv))
	util.Writen(buf, 4, 8, frame.Argc)
	util.Writen(buf, 4, 12, int(frame.Magic))
	ok := t.Thread.PageDirectory.WriteUser(t.UserStack, buf)
	assertf(ok, "enter_user_jmp: user stack not mapped writable")

	t.InUser = true
	return frame
}
