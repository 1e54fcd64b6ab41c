// Package stats holds the tasking core's scheduler counters: fork,
// clone, switch and reap tallies, kept cheap enough to leave on. It is
// adapted from biscuit's stats.go; the original's Rdtsc-gated cycle
// timing is dropped (runtime.Rdtsc is a bare-metal-only intrinsic this
// module has no replacement for), but the Counter_t bookkeeping and
// Stats2String formatting survive unchanged, since proc.Profile and
// proc.DumpTasks build directly on them.
package stats

import "reflect"
import "sync/atomic"
import "strconv"
import "strings"
import "unsafe"

// Stats enables counter bookkeeping. Unlike the teacher's bare-metal
// original (gated off by default to avoid perturbing cycle counts on
// real hardware), this simulation has no such cost and leaves
// counting on so proc.Profile always has real data to export.
const Stats = true

var Nirqs [100]int
var Irqs int

/// Counter_t is a statistical counter.
type Counter_t int64

/// Inc increments the counter.
func (c *Counter_t) Inc() {
	if Stats {
		n := (*int64)(unsafe.Pointer(c))
		atomic.AddInt64(n, 1)
	}
}

/// Stats2String converts a struct of counters to a printable string.
func Stats2String(st interface{}) string {
	if !Stats {
		return ""
	}
	v := reflect.ValueOf(st)
	s := ""
	for i := 0; i < v.NumField(); i++ {
		t := v.Field(i).Type().String()
		if strings.HasSuffix(t, "Counter_t") {
			n := v.Field(i).Interface().(Counter_t)
			s += "\n\t#" + v.Type().Field(i).Name + ": " + strconv.FormatInt(int64(n), 10)
		}
	}
	return s + "\n"
}
