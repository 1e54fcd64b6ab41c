package fd

import "testing"

type mockOps struct {
	reopened bool
	closed   bool
	failOpen bool
}

func (m *mockOps) Reopen() bool {
	if m.failOpen {
		return false
	}
	m.reopened = true
	return true
}
func (m *mockOps) Close() bool {
	m.closed = true
	return true
}

func TestAddAndCloneReopens(t *testing.T) {
	tbl := NewTable()
	op := &mockOps{}
	idx := tbl.Add(&Fd_t{Ops: op, Perms: FD_READ})
	if idx != 0 {
		t.Fatalf("first Add index = %d, want 0", idx)
	}

	clone := tbl.Clone()
	if !op.reopened {
		t.Fatal("Clone did not reopen the underlying descriptor")
	}
	if clone.fds[0] == tbl.fds[0] {
		t.Fatal("cloned descriptor shares storage with the original")
	}
}

func TestCloneSkipsFailedReopen(t *testing.T) {
	tbl := NewTable()
	tbl.Add(&Fd_t{Ops: &mockOps{failOpen: true}})
	clone := tbl.Clone()
	if clone.fds[0] != nil {
		t.Fatal("Clone kept a descriptor whose Reopen failed")
	}
}

func TestAddReusesFreedSlot(t *testing.T) {
	tbl := NewTable()
	tbl.Add(&Fd_t{Ops: &mockOps{}})
	tbl.fds[0] = nil
	idx := tbl.Add(&Fd_t{Ops: &mockOps{}})
	if idx != 0 {
		t.Fatalf("Add index = %d, want reused slot 0", idx)
	}
}

func TestCloseAllClosesEveryDescriptor(t *testing.T) {
	tbl := NewTable()
	a, b := &mockOps{}, &mockOps{}
	tbl.Add(&Fd_t{Ops: a})
	tbl.Add(&Fd_t{Ops: b})
	tbl.CloseAll()
	if !a.closed || !b.closed {
		t.Fatal("CloseAll did not close every descriptor")
	}
	if tbl.fds != nil {
		t.Fatal("CloseAll did not release table storage")
	}
}
