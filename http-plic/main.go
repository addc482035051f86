package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	plic "github.com/rphilander/plic/core"
)

// Gateway exposes the plic core socket over HTTP.
type Gateway struct {
	conn    net.Conn
	mu      sync.Mutex // serializes request/response pairs on conn
	timeout time.Duration
}

func (g *Gateway) send(req map[string]any) (map[string]any, error) {
	req["id"] = plic.NextID()
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.timeout > 0 {
		g.conn.SetDeadline(time.Now().Add(g.timeout))
		defer g.conn.SetDeadline(time.Time{})
	}
	if err := plic.WriteMsg(g.conn, req); err != nil {
		return nil, fmt.Errorf("write: %w", err)
	}
	resp, err := plic.ReadMsg(g.conn)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	return resp, nil
}

func (g *Gateway) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/eval", g.handleEval)
	mux.HandleFunc("/builtins", g.handleBuiltins)
	mux.HandleFunc("/traces", g.handleTraces)
	return mux
}

// handleEval: POST /eval with the expression as the request body.
func (g *Gateway) handleEval(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}
	expr := strings.TrimRight(string(body), "\r\n")
	g.forward(w, map[string]any{"op": "eval", "expr": expr})
}

func (g *Gateway) handleBuiltins(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	g.forward(w, map[string]any{"op": "builtins"})
}

// handleTraces: GET /traces or GET /traces?n=N
func (g *Gateway) handleTraces(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	req := map[string]any{"op": "traces"}
	if s := r.URL.Query().Get("n"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			http.Error(w, "n must be a non-negative integer", http.StatusBadRequest)
			return
		}
		req["n"] = n
	}
	g.forward(w, req)
}

// forward relays req to the core and writes its response as JSON. Evaluation
// failures are 422; an unreachable core is 502.
func (g *Gateway) forward(w http.ResponseWriter, req map[string]any) {
	resp, err := g.send(req)
	if err != nil {
		log.Printf("core request: %v", err)
		http.Error(w, "failed to reach core", http.StatusBadGateway)
		return
	}
	delete(resp, "id")

	status := http.StatusOK
	if ok, _ := resp["ok"].(bool); !ok {
		status = http.StatusUnprocessableEntity
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Printf("write response: %v", err)
	}
}

func main() {
	cfg, err := plic.LoadConfig(plic.ConfigPath())
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	conn, err := net.Dial("unix", cfg.Socket)
	if err != nil {
		log.Fatalf("connect to core socket: %v", err)
	}
	defer conn.Close()
	log.Printf("connected to core socket: %s", cfg.Socket)

	g := &Gateway{conn: conn, timeout: 30 * time.Second}
	srv := &http.Server{
		Addr:    cfg.HTTP.Addr,
		Handler: g.Handler(),
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("shutting down...")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	}()

	log.Printf("listening on %s", cfg.HTTP.Addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("http server: %v", err)
	}
}
