package plic

// Trace records one evaluation handled by the daemon: the input line and
// either the rendered result or the error phrase with its detail. Each line
// is evaluated in a fresh environment, so a trace is enough to reproduce it.
type Trace struct {
	Line      string
	Result    string // rendered value, empty on error
	Kind      string // value kind name, empty on error
	Error     string // fixed phrase, empty on success
	Detail    string // specific cause of the error
	Timestamp string // RFC 3339
}

func (t *Trace) OK() bool {
	return t.Error == ""
}

// ToGo converts a Trace to a JSON-friendly map for the traces op.
func (t *Trace) ToGo() map[string]any {
	m := map[string]any{
		"line":      t.Line,
		"timestamp": t.Timestamp,
	}
	if t.OK() {
		m["result"] = t.Result
		m["kind"] = t.Kind
		m["error"] = nil
	} else {
		m["result"] = nil
		m["error"] = t.Error
		if t.Detail != "" {
			m["detail"] = t.Detail
		}
	}
	return m
}

// traceRing keeps the newest traces up to a cap.
type traceRing struct {
	traces []Trace
	max    int
}

func (r *traceRing) append(t Trace) {
	if r.max == 0 {
		return
	}
	r.traces = append(r.traces, t)
	if len(r.traces) > r.max {
		// Drop oldest traces
		excess := len(r.traces) - r.max
		r.traces = r.traces[excess:]
	}
}

// last returns up to n of the newest traces, oldest first. n < 0 means all.
func (r *traceRing) last(n int) []Trace {
	if n < 0 || n > len(r.traces) {
		n = len(r.traces)
	}
	out := make([]Trace, n)
	copy(out, r.traces[len(r.traces)-n:])
	return out
}

func (r *traceRing) clear() {
	r.traces = nil
}
