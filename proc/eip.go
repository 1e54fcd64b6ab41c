package proc

import (
	"reflect"
	"runtime"
)

// textWhitelist stands in for the &code/&end kernel-text bounds a
// real eip check would use (Go exposes no linker symbols for a
// binary's own text segment): the small, fixed set of functions that
// ever call captureEip, obtained through reflect/runtime rather than
// guessed at as an address range.
var textWhitelist = buildWhitelist()

func buildWhitelist() map[string]bool {
	w := map[string]bool{}
	fns := []interface{}{SwitchTask, doSpawn, TaskingInstall}
	for _, fn := range fns {
		pc := reflect.ValueOf(fn).Pointer()
		if f := runtime.FuncForPC(pc); f != nil {
			w[f.Name()] = true
		}
	}
	return w
}

// captureEip is this module's read_eip: it returns the real program
// counter of its caller. Unlike the source's inline-assembly stub,
// there is no second "resume" return from this same call -- in this
// module resumption is a channel receive inside SwitchTask, not a
// second return from captureEip -- so captureEip only ever produces
// the "live" value; RESUME_MAGIC is delivered separately over the
// resume channel (see sched.go).
func captureEip() uintptr {
	var pcs [1]uintptr
	n := runtime.Callers(2, pcs[:])
	assertf(n > 0, "read_eip: no caller pc")
	return pcs[0]
}

// validEip checks that a selected task's thread.eip lies in the
// kernel text segment before it is resumed.
func validEip(pc uintptr) bool {
	f := runtime.FuncForPC(pc)
	return f != nil && textWhitelist[f.Name()]
}
