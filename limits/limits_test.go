package limits

import "testing"

func TestTakenRefusesBeyondLimit(t *testing.T) {
	var s Sysatomic_t = 2
	if !s.Take() {
		t.Fatal("first Take should succeed")
	}
	if !s.Take() {
		t.Fatal("second Take should succeed")
	}
	if s.Take() {
		t.Fatal("Take beyond the limit should fail")
	}
	if int64(s) != 0 {
		t.Fatalf("limit left at %d after a failed Take, want unchanged at 0", s)
	}
}

func TestGiveRestoresCapacity(t *testing.T) {
	var s Sysatomic_t = 1
	s.Take()
	if s.Take() {
		t.Fatal("limit should be exhausted")
	}
	s.Give()
	if !s.Take() {
		t.Fatal("Take should succeed again after Give restored capacity")
	}
}
