package plic

import (
	"encoding/json"
	"net"
	"path/filepath"
	"testing"
	"time"
)

func newTestCore(t *testing.T, maxTraces int, store *TraceStore) *Core {
	t.Helper()
	c, err := newCore(NewInterpreter(DefaultOptions()), maxTraces, store)
	if err != nil {
		t.Fatal(err)
	}
	c.now = func() time.Time { return time.Date(2026, 2, 27, 20, 0, 0, 0, time.UTC) }
	return c
}

func TestCoreManual(t *testing.T) {
	c := newTestCore(t, 10, nil)
	resp := c.handleRequest(map[string]any{"id": "r1"})
	if resp["ok"] != true || resp["id"] != "r1" {
		t.Fatalf("unexpected response %v", resp)
	}
	manual := resp["value"].(map[string]any)
	if manual["name"] != "plic-core" {
		t.Fatalf("unexpected manual %v", manual)
	}
}

func TestCoreEval(t *testing.T) {
	c := newTestCore(t, 10, nil)
	resp := c.handleRequest(map[string]any{"id": "r1", "op": "eval", "expr": "(+ 1 (- 5 2))"})
	if resp["ok"] != true {
		t.Fatalf("unexpected response %v", resp)
	}
	if resp["value"] != uint64(4) || resp["kind"] != "Integer" || resp["rendered"] != "4" {
		t.Fatalf("unexpected response %v", resp)
	}

	resp = c.handleRequest(map[string]any{"id": "r2", "op": "eval", "expr": "(λ x x)"})
	if resp["rendered"] != "x => x " || resp["kind"] != "Lambda" {
		t.Fatalf("unexpected response %v", resp)
	}
}

func TestCoreEvalError(t *testing.T) {
	c := newTestCore(t, 10, nil)
	resp := c.handleRequest(map[string]any{"id": "r1", "op": "eval", "expr": "(1 2)"})
	if resp["ok"] != false || resp["error"] != "not applicable" {
		t.Fatalf("unexpected response %v", resp)
	}
	resp = c.handleRequest(map[string]any{"id": "r2", "op": "eval"})
	if resp["ok"] != false {
		t.Fatalf("missing expr should fail: %v", resp)
	}
}

func TestCoreTracesRecorded(t *testing.T) {
	c := newTestCore(t, 10, nil)
	c.handleRequest(map[string]any{"op": "eval", "expr": "(+ 1 2)"})
	c.handleRequest(map[string]any{"op": "eval", "expr": "(- 1 2)"})

	resp := c.handleRequest(map[string]any{"op": "traces"})
	traces := resp["value"].([]any)
	if len(traces) != 2 {
		t.Fatalf("expected 2 traces, got %d", len(traces))
	}
	first := traces[0].(map[string]any)
	if first["line"] != "(+ 1 2)" || first["result"] != "3" || first["timestamp"] != "2026-02-27T20:00:00Z" {
		t.Fatalf("unexpected trace %v", first)
	}
	second := traces[1].(map[string]any)
	if second["error"] != "malformed expression" || second["detail"] != "minus: 1 - 2 is negative" {
		t.Fatalf("unexpected trace %v", second)
	}

	resp = c.handleRequest(map[string]any{"op": "traces", "n": float64(1)})
	if got := resp["value"].([]any); len(got) != 1 || got[0].(map[string]any)["line"] != "(- 1 2)" {
		t.Fatalf("unexpected traces %v", got)
	}

	resp = c.handleRequest(map[string]any{"op": "traces", "n": float64(-1)})
	if resp["ok"] != false {
		t.Fatalf("negative n should fail: %v", resp)
	}

	c.handleRequest(map[string]any{"op": "clear"})
	resp = c.handleRequest(map[string]any{"op": "traces"})
	if got := resp["value"].([]any); len(got) != 0 {
		t.Fatalf("expected no traces after clear, got %v", got)
	}
}

func TestCoreTokensAndCapture(t *testing.T) {
	c := newTestCore(t, 10, nil)
	resp := c.handleRequest(map[string]any{"op": "tokens", "expr": "(+ 1 $)"})
	toks := resp["value"].([]any)
	want := []string{"ParenOpen", "Plus", "Number(1)", `Illegal("$")`, "ParenClose"}
	if len(toks) != len(want) {
		t.Fatalf("unexpected tokens %v", toks)
	}
	for i := range want {
		if toks[i] != want[i] {
			t.Fatalf("token %d: expected %s, got %v", i, want[i], toks[i])
		}
	}

	resp = c.handleRequest(map[string]any{"op": "capture", "expr": "( 1 ( 2 3 ) 3 )"})
	if resp["value"] != "( 1 ( 2 3 ) 3 ) " {
		t.Fatalf("unexpected capture %v", resp)
	}
	resp = c.handleRequest(map[string]any{"op": "capture", "expr": ")"})
	if resp["ok"] != false || resp["error"] != "unexpected closing parenthesis" {
		t.Fatalf("unexpected capture %v", resp)
	}
}

func TestCoreBuiltins(t *testing.T) {
	c := newTestCore(t, 10, nil)
	resp := c.handleRequest(map[string]any{"op": "builtins"})
	list := resp["value"].([]any)
	if len(list) != 2 {
		t.Fatalf("unexpected builtins %v", list)
	}
	plus := list[0].(map[string]any)
	if plus["name"] != "plus" || plus["symbol"] != "+" {
		t.Fatalf("unexpected builtin %v", plus)
	}
}

func TestCoreUnknownOp(t *testing.T) {
	c := newTestCore(t, 10, nil)
	resp := c.handleRequest(map[string]any{"id": "r9", "op": "define"})
	if resp["ok"] != false || resp["error"] != "unknown op: define" {
		t.Fatalf("unexpected response %v", resp)
	}
}

func TestCoreTracesPersisted(t *testing.T) {
	store, err := OpenTraceStore(filepath.Join(t.TempDir(), "traces.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	c := newTestCore(t, 10, store)
	c.handleRequest(map[string]any{"op": "eval", "expr": "(+ 2 2)"})

	// A new core on the same store starts with the old traces.
	c2 := newTestCore(t, 10, store)
	resp := c2.handleRequest(map[string]any{"op": "traces"})
	traces := resp["value"].([]any)
	if len(traces) != 1 || traces[0].(map[string]any)["result"] != "4" {
		t.Fatalf("unexpected traces %v", traces)
	}
}

func TestCoreSocketRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Socket = filepath.Join(t.TempDir(), "plic.sock")
	c, err := NewCore(cfg)
	if err != nil {
		t.Fatal(err)
	}
	go c.Run()
	defer c.Shutdown()

	conn, err := net.Dial("unix", c.Addr())
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	if err := WriteMsg(conn, map[string]any{"id": "r1", "op": "eval", "expr": "(+ 40 2)"}); err != nil {
		t.Fatal(err)
	}
	resp, err := ReadMsg(conn)
	if err != nil {
		t.Fatal(err)
	}
	if resp["id"] != "r1" || resp["ok"] != true || resp["value"] != json.Number("42") || resp["rendered"] != "42" {
		t.Fatalf("unexpected response %v", resp)
	}
}

func TestCoreTracesHugeN(t *testing.T) {
	c := newTestCore(t, 10, nil)
	c.handleRequest(map[string]any{"op": "eval", "expr": "1"})
	c.handleRequest(map[string]any{"op": "eval", "expr": "2"})

	for _, n := range []any{float64(1e30), json.Number("1e30"), json.Number("18446744073709551616"), json.Number("2")} {
		resp := c.handleRequest(map[string]any{"op": "traces", "n": n})
		if resp["ok"] != true {
			t.Fatalf("n=%v: unexpected response %v", n, resp)
		}
		if got := resp["value"].([]any); len(got) != 2 {
			t.Fatalf("n=%v: expected all 2 traces, got %d", n, len(got))
		}
	}
	for _, n := range []any{json.Number("-1"), json.Number("-1e30"), "3", nil} {
		resp := c.handleRequest(map[string]any{"op": "traces", "n": n})
		if resp["ok"] != false {
			t.Fatalf("n=%v: expected error, got %v", n, resp)
		}
	}
}

func TestCoreShutdownWithOpenConnection(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Socket = filepath.Join(t.TempDir(), "plic.sock")
	c, err := NewCore(cfg)
	if err != nil {
		t.Fatal(err)
	}
	go c.Run()

	conn, err := net.Dial("unix", c.Addr())
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()
	if err := WriteMsg(conn, map[string]any{"id": "r1", "op": "eval", "expr": "1"}); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadMsg(conn); err != nil {
		t.Fatal(err)
	}

	c.Shutdown()
	c.Shutdown()

	// The connection outlives the listener; its requests are refused.
	if err := WriteMsg(conn, map[string]any{"id": "r2", "op": "eval", "expr": "2"}); err != nil {
		t.Fatal(err)
	}
	resp, err := ReadMsg(conn)
	if err != nil {
		t.Fatal(err)
	}
	if resp["id"] != "r2" || resp["ok"] != false || resp["error"] != "core is shutting down" {
		t.Fatalf("unexpected response %v", resp)
	}
}

func TestCoreSendAfterShutdown(t *testing.T) {
	c := newTestCore(t, 10, nil)
	c.Shutdown()
	resp := c.sendToActor(map[string]any{"id": "r1", "op": "builtins"})
	if resp["ok"] != false || resp["id"] != "r1" {
		t.Fatalf("unexpected response %v", resp)
	}
}
