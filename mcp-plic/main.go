package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	plic "github.com/rphilander/plic/core"
)

// bridge forwards MCP tool calls to the plic core socket.
type bridge struct {
	conn io.ReadWriter
	mu   sync.Mutex
}

// send sends a request to the plic core and returns the response.
func (b *bridge) send(req map[string]any) (map[string]any, error) {
	req["id"] = plic.NextID()
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := plic.WriteMsg(b.conn, req); err != nil {
		return nil, fmt.Errorf("write: %w", err)
	}
	resp, err := plic.ReadMsg(b.conn)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	return resp, nil
}

// formatResult turns a core response into an MCP tool result.
func formatResult(resp map[string]any) (*mcp.CallToolResult, error) {
	ok, _ := resp["ok"].(bool)
	if !ok {
		errMsg, _ := resp["error"].(string)
		if errMsg == "" {
			errMsg = "unknown error"
		}
		return mcp.NewToolResultError(errMsg), nil
	}
	if rendered, ok := resp["rendered"].(string); ok {
		return mcp.NewToolResultText(rendered), nil
	}
	out, err := json.MarshalIndent(resp["value"], "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal value: %w", err)
	}
	return mcp.NewToolResultText(string(out)), nil
}

// exprTool handles tools that take a single expr argument.
func (b *bridge) exprTool(op string) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		expr, err := request.RequireString("expr")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		resp, err := b.send(map[string]any{"op": op, "expr": expr})
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return formatResult(resp)
	}
}

func (b *bridge) handleBuiltins(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	resp, err := b.send(map[string]any{"op": "builtins"})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return formatResult(resp)
}

func (b *bridge) handleTraces(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	req := map[string]any{"op": "traces"}
	if n := request.GetInt("n", -1); n >= 0 {
		req["n"] = n
	}
	resp, err := b.send(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return formatResult(resp)
}

func newServer(b *bridge) *server.MCPServer {
	s := server.NewMCPServer(
		"plic",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	s.AddTool(
		mcp.NewTool("plic_eval",
			mcp.WithDescription("Evaluate one plic line. Returns the rendered value."),
			mcp.WithString("expr",
				mcp.Required(),
				mcp.Description("Expression to evaluate, e.g. (+ 1 (- 5 2))"),
			),
		),
		b.exprTool("eval"),
	)

	s.AddTool(
		mcp.NewTool("plic_tokens",
			mcp.WithDescription("Tokenize one plic line without evaluating it."),
			mcp.WithString("expr",
				mcp.Required(),
				mcp.Description("Text to tokenize"),
			),
		),
		b.exprTool("tokens"),
	)

	s.AddTool(
		mcp.NewTool("plic_capture",
			mcp.WithDescription("Re-serialize one expression token by token, the way lambda bodies are stored."),
			mcp.WithString("expr",
				mcp.Required(),
				mcp.Description("Expression to capture"),
			),
		),
		b.exprTool("capture"),
	)

	s.AddTool(
		mcp.NewTool("plic_builtins",
			mcp.WithDescription("List the builtin operations."),
		),
		b.handleBuiltins,
	)

	s.AddTool(
		mcp.NewTool("plic_traces",
			mcp.WithDescription("Return recent evaluations recorded by the core, oldest first."),
			mcp.WithNumber("n",
				mcp.Description("Maximum number of traces to return"),
			),
		),
		b.handleTraces,
	)

	return s
}

func main() {
	cfg, err := plic.LoadConfig(plic.ConfigPath())
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	conn, err := net.Dial("unix", cfg.Socket)
	if err != nil {
		log.Fatalf("connect to %s: %v", cfg.Socket, err)
	}
	defer conn.Close()
	log.Printf("connected to plic core: %s", cfg.Socket)

	s := newServer(&bridge{conn: conn})
	if err := server.ServeStdio(s); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
