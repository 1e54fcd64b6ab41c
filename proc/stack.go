package proc

import "unsafe"

// copyStack duplicates src's kernel stack into dst byte-for-byte and,
// if a syscall frame is in progress, rebases dst's SyscallRegs pointer
// by the base-to-base offset between the two stacks. SyscallRegs is
// the only stack-relative pointer this module's reduced register
// frame carries, so it is the only one that needs rebasing here.
func copyStack(dst, src *Task_t) {
	copy(dst.Image.Stack, src.Image.Stack)
	if src.SyscallRegs == nil {
		dst.SyscallRegs = nil
		return
	}
	off := uintptr(unsafe.Pointer(src.SyscallRegs)) - src.Image.Base()
	dst.SyscallRegs = (*SyscallRegs)(unsafe.Pointer(dst.Image.Base() + off))
}

// relocate applies a symmetric esp/ebp translation: new = old +
// (childTop - parentTop), applied uniformly regardless of the sign of
// the delta. An asymmetric ebp' = ebp - delta formula would be a
// latent bug whenever the child's stack lies above the parent's, and
// is deliberately not reproduced here.
func relocate(old, parentTop, childTop uintptr) uintptr {
	delta := int64(childTop) - int64(parentTop)
	return uintptr(int64(old) + delta)
}
