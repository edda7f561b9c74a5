package harness

import (
	"fmt"
	"strings"
)

// FormatTrace renders a Result as plain text, one line per trace event.
//
//	run_id=<id> environment=release planned=10 attempted=10 pass=true
//	[1] cycle=1 new_options
//	[2] cycle=1 set_environment env=release
//	[3] cycle=1 init env=release
//	[4] cycle=1 shutdown
//
// Failed steps carry a quoted error= suffix.
func FormatTrace(r *Result) string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "run_id=%s environment=%s planned=%d attempted=%d pass=%t\n",
		r.RunID, r.Environment, r.CyclesPlanned, r.CyclesAttempted, r.Pass)

	for _, e := range r.Trace {
		fmt.Fprintf(&buf, "[%d] cycle=%d %s", e.Seq, e.Cycle, e.Op)
		if e.Environment != "" {
			fmt.Fprintf(&buf, " env=%s", e.Environment)
		}
		if e.Error != "" {
			fmt.Fprintf(&buf, " error=%q", e.Error)
		}
		buf.WriteByte('\n')
	}
	return buf.String()
}
