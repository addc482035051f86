package plic

import (
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"sync"
	"time"
)

// Core is the evaluation daemon. A single actor goroutine owns the
// interpreter and the trace log; connections hand it requests over a channel.
type Core struct {
	interp   *Interpreter
	requests chan coreRequest
	listener net.Listener
	traces   traceRing
	store    *TraceStore // nil when traces are not persisted
	now      func() time.Time

	done     chan struct{} // closed by Shutdown; requests is never closed
	stopOnce sync.Once
	actor    sync.WaitGroup
}

type coreRequest struct {
	msg      map[string]any
	response chan map[string]any
}

// NewCore opens the trace store (if configured) and listens on cfg.Socket.
func NewCore(cfg Config) (*Core, error) {
	var store *TraceStore
	if cfg.TraceDB != "" {
		s, err := OpenTraceStore(cfg.TraceDB)
		if err != nil {
			return nil, err
		}
		store = s
	}

	opts := cfg.Options()
	opts.Logger = log.Default()
	c, err := newCore(NewInterpreter(opts), cfg.MaxTraces, store)
	if err != nil {
		if store != nil {
			store.Close()
		}
		return nil, err
	}

	// Clean up stale socket
	os.Remove(cfg.Socket)
	listener, err := net.Listen("unix", cfg.Socket)
	if err != nil {
		if store != nil {
			store.Close()
		}
		return nil, fmt.Errorf("listen: %w", err)
	}
	c.listener = listener
	return c, nil
}

// newCore builds a core without a listener and seeds the in-memory traces
// from the store.
func newCore(interp *Interpreter, maxTraces int, store *TraceStore) (*Core, error) {
	c := &Core{
		interp:   interp,
		requests: make(chan coreRequest, 64),
		traces:   traceRing{max: maxTraces},
		store:    store,
		now:      time.Now,
		done:     make(chan struct{}),
	}
	if store != nil && maxTraces > 0 {
		recent, err := store.Recent(maxTraces)
		if err != nil {
			return nil, err
		}
		c.traces.traces = recent
	}
	return c, nil
}

// Run starts the actor goroutine and accepts connections. Blocks until
// shutdown.
func (c *Core) Run() {
	c.actor.Add(1)
	go c.actorLoop()
	c.acceptClients()
}

func (c *Core) Addr() string {
	return c.listener.Addr().String()
}

func (c *Core) acceptClients() {
	for {
		conn, err := c.listener.Accept()
		if err != nil {
			return
		}
		go c.handleClientConnection(conn)
	}
}

// Shutdown stops accepting connections, waits for the actor to finish the
// request in hand and closes the trace store. Connections still open get an
// error response for anything they send afterwards. Safe to call twice.
func (c *Core) Shutdown() {
	c.stopOnce.Do(func() {
		if c.listener != nil {
			c.listener.Close()
		}
		close(c.done)
		c.actor.Wait()
		if c.store != nil {
			c.store.Close()
		}
	})
}

// actorLoop is the single goroutine that owns interpreter and trace state.
func (c *Core) actorLoop() {
	defer c.actor.Done()
	for {
		select {
		case req := <-c.requests:
			req.response <- c.handleRequest(req.msg)
		case <-c.done:
			return
		}
	}
}

// sendToActor sends a request to the core actor and waits for the response.
func (c *Core) sendToActor(msg map[string]any) map[string]any {
	id, _ := msg["id"].(string)
	resp := make(chan map[string]any, 1)
	select {
	case c.requests <- coreRequest{msg: msg, response: resp}:
	case <-c.done:
		return errorResponse(id, "core is shutting down")
	}
	select {
	case r := <-resp:
		return r
	case <-c.done:
		return errorResponse(id, "core is shutting down")
	}
}

func (c *Core) handleRequest(msg map[string]any) map[string]any {
	id, _ := msg["id"].(string)

	op, _ := msg["op"].(string)
	if op == "" {
		// Empty request or no op: return manual
		return c.coreManual(id)
	}

	switch op {
	case "eval":
		return c.handleEval(id, msg)
	case "tokens":
		return c.handleTokens(id, msg)
	case "capture":
		return c.handleCapture(id, msg)
	case "builtins":
		return c.handleBuiltins(id)
	case "traces":
		return c.handleTraces(id, msg)
	case "clear":
		return c.handleClear(id)
	default:
		return errorResponse(id, fmt.Sprintf("unknown op: %s", op))
	}
}

func (c *Core) coreManual(id string) map[string]any {
	builtins := make([]any, 0, 2)
	for _, name := range Builtins() {
		builtins = append(builtins, name)
	}
	return map[string]any{
		"id": id,
		"ok": true,
		"value": map[string]any{
			"name":    "plic-core",
			"version": "1.0.0",
			"ops": map[string]any{
				"eval":     "Evaluate one line. Params: expr (string)",
				"tokens":   "Tokenize one line. Params: expr (string)",
				"capture":  "Re-serialize one expression without evaluating it. Params: expr (string)",
				"builtins": "List the builtin operations.",
				"traces":   "Return recent evaluations. Params: n (int, optional)",
				"clear":    "Drop all recorded traces.",
			},
			"builtins": builtins,
			"forms":    []any{"λ"},
		},
	}
}

func (c *Core) handleEval(id string, msg map[string]any) map[string]any {
	expr, ok := msg["expr"].(string)
	if !ok {
		return errorResponse(id, "eval: missing 'expr' string")
	}

	trace := Trace{
		Line:      expr,
		Timestamp: c.now().UTC().Format(time.RFC3339),
	}
	val, err := c.interp.Evaluate(expr)
	if err != nil {
		trace.Error = err.Error()
		if e, ok := err.(*EvalError); ok {
			trace.Detail = e.Detail
		}
		c.appendTrace(trace)
		return errorResponse(id, err.Error())
	}

	trace.Result = val.String()
	trace.Kind = val.KindName()
	c.appendTrace(trace)

	goVal, err := ValueToGo(val)
	if err != nil {
		return errorResponse(id, fmt.Sprintf("serialize result: %s", err))
	}
	return map[string]any{
		"id":       id,
		"ok":       true,
		"value":    goVal,
		"kind":     val.KindName(),
		"rendered": val.String(),
	}
}

func (c *Core) handleTokens(id string, msg map[string]any) map[string]any {
	expr, ok := msg["expr"].(string)
	if !ok {
		return errorResponse(id, "tokens: missing 'expr' string")
	}
	toks := c.interp.Tokens(expr)
	out := make([]any, len(toks))
	for i, t := range toks {
		out[i] = t.String()
	}
	return map[string]any{"id": id, "ok": true, "value": out}
}

func (c *Core) handleCapture(id string, msg map[string]any) map[string]any {
	expr, ok := msg["expr"].(string)
	if !ok {
		return errorResponse(id, "capture: missing 'expr' string")
	}
	text, err := c.interp.Capture(expr)
	if err != nil {
		return errorResponse(id, err.Error())
	}
	return map[string]any{"id": id, "ok": true, "value": text}
}

func (c *Core) handleBuiltins(id string) map[string]any {
	names := Builtins()
	out := make([]any, len(names))
	for i, name := range names {
		op, _ := LookupOp(name)
		out[i] = map[string]any{"name": name, "symbol": op.Symbol()}
	}
	return map[string]any{"id": id, "ok": true, "value": out}
}

// handleTraces: {"op": "traces"} or {"op": "traces", "n": N}
func (c *Core) handleTraces(id string, msg map[string]any) map[string]any {
	n := -1
	if raw, exists := msg["n"]; exists {
		v, ok := MsgInt(raw, len(c.traces.traces))
		if !ok {
			return errorResponse(id, "traces: 'n' must be a non-negative number")
		}
		n = v
	}
	traces := c.traces.last(n)
	out := make([]any, len(traces))
	for i := range traces {
		out[i] = traces[i].ToGo()
	}
	return map[string]any{"id": id, "ok": true, "value": out}
}

func (c *Core) handleClear(id string) map[string]any {
	c.traces.clear()
	if c.store != nil {
		if err := c.store.Clear(); err != nil {
			return errorResponse(id, err.Error())
		}
	}
	return map[string]any{"id": id, "ok": true, "value": "cleared"}
}

// appendTrace records a trace in memory and, if configured, on disk. A
// failed write is logged; evaluation results are never held back by it.
func (c *Core) appendTrace(t Trace) {
	c.traces.append(t)
	if c.store != nil {
		if err := c.store.Append(t); err != nil {
			log.Printf("trace store: %v", err)
		}
	}
}

func errorResponse(id, errMsg string) map[string]any {
	return map[string]any{"id": id, "ok": false, "error": errMsg}
}

// --- Connection handling ---

func (c *Core) handleClientConnection(conn net.Conn) {
	defer conn.Close()

	for {
		msg, err := ReadMsg(conn)
		if err != nil {
			if err != io.EOF {
				log.Printf("read client message: %v", err)
			}
			return
		}

		resp := c.sendToActor(msg)
		if err := WriteMsg(conn, resp); err != nil {
			log.Printf("write client response: %v", err)
			return
		}
	}
}
