package proc

import (
	"bytes"
	"io"

	"github.com/google/pprof/profile"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"tasking/stats"
)

// Profile exports the scheduler counters (forks, clones, switches,
// reaps) as a pprof profile: one sample per counter, value = the
// counter's current count. This is the module's one wiring of
// github.com/google/pprof, matching the teacher's own dependency.
func Profile() *profile.Profile {
	counters := []struct {
		name  string
		value stats.Counter_t
	}{
		{"fork", Forks},
		{"clone", Clones},
		{"switch", Switches},
		{"reap", Reaps},
	}
	p := &profile.Profile{
		SampleType:        []*profile.ValueType{{Type: "count", Unit: "count"}},
		DefaultSampleType: "count",
		PeriodType:        &profile.ValueType{Type: "event", Unit: "count"},
		Period:            1,
	}
	for _, c := range counters {
		p.Sample = append(p.Sample, &profile.Sample{
			Value: []int64{int64(c.value)},
			Label: map[string][]string{"event": {c.name}},
		})
	}
	return p
}

// WriteProfile serializes Profile to w in pprof's wire format.
func WriteProfile(w io.Writer) error {
	return Profile().Write(w)
}

// DumpTasks is a ps-like listing: pid, status, and accounted usage
// for every live task, formatted with golang.org/x/text/message so
// nanosecond counts get thousands separators, followed by the
// scheduler counters rendered through stats.Stats2String.
func DumpTasks() string {
	schedMu.Lock()
	snapshot := make([]*Task_t, 0, len(tasks))
	for _, t := range tasks {
		snapshot = append(snapshot, t)
	}
	schedMu.Unlock()

	p := message.NewPrinter(language.English)
	var buf bytes.Buffer
	for _, t := range snapshot {
		p.Fprintf(&buf, "pid %d  %-8s  user=%dns sys=%dns  exit=%d\n",
			int(t.Pid), t.State(), t.Acct.Userns, t.Acct.Sysns, t.ExitCode())
	}
	buf.WriteString(stats.Stats2String(struct {
		Forks, Clones, Switches, Reaps stats.Counter_t
	}{Forks, Clones, Switches, Reaps}))
	return buf.String()
}
