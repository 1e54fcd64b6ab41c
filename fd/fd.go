// Package fd implements the per-task open-file-descriptor table. The
// tasking core treats fds as opaque; this package supplies just
// enough of a real descriptor table — grounded in biscuit's fd.go —
// for fork/clone to have something concrete to duplicate and for
// task_exit/reap_process to have something concrete to tear down.
package fd

import "sync"

// Ops_i is the operation set an open descriptor must support. It
// stands in for biscuit's much larger Fdops_i; the tasking core only
// ever needs to duplicate (on fork) and close (on reap) a descriptor.
type Ops_i interface {
	Reopen() bool
	Close() bool
}

// Fd_t is one open file descriptor.
type Fd_t struct {
	Ops   Ops_i
	Perms int
}

// Permission bits.
const (
	FD_READ  = 0x1
	FD_WRITE = 0x2
)

// Table_t is a task's file-descriptor table.
type Table_t struct {
	sync.Mutex
	fds []*Fd_t
}

// NewTable returns an empty descriptor table.
func NewTable() *Table_t {
	return &Table_t{}
}

// Clone duplicates every open descriptor by reopening its underlying
// operations, giving spawn_process's child its own inherited copy of
// the parent's open files.
func (t *Table_t) Clone() *Table_t {
	t.Lock()
	defer t.Unlock()
	nt := &Table_t{fds: make([]*Fd_t, len(t.fds))}
	for i, f := range t.fds {
		if f == nil {
			continue
		}
		if !f.Ops.Reopen() {
			continue
		}
		cp := *f
		nt.fds[i] = &cp
	}
	return nt
}

// Add installs fd at the lowest free slot and returns its index.
func (t *Table_t) Add(f *Fd_t) int {
	t.Lock()
	defer t.Unlock()
	for i, e := range t.fds {
		if e == nil {
			t.fds[i] = f
			return i
		}
	}
	t.fds = append(t.fds, f)
	return len(t.fds) - 1
}

// CloseAll closes every open descriptor, freeing the table's
// storage as part of reap_process's teardown.
func (t *Table_t) CloseAll() {
	t.Lock()
	defer t.Unlock()
	for _, f := range t.fds {
		if f != nil {
			f.Ops.Close()
		}
	}
	t.fds = nil
}
