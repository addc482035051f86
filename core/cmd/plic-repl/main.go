package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/peterh/liner"

	plic "github.com/rphilander/plic/core"
)

const helpText = `REPL commands:
  :quit           Exit the REPL
  :tokens <expr>  Show the tokens of <expr>
  :capture <expr> Show <expr> re-serialized without evaluation
  :builtins       List builtin operations
  :help           Show this help`

func main() {
	cfg, err := plic.LoadConfig(plic.ConfigPath())
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	opts := cfg.Options()
	if cfg.TraceTokens {
		opts.Logger = log.New(os.Stderr, "", 0)
	}
	interp := plic.NewInterpreter(opts)

	histPath := cfg.REPL.HistoryFile
	if histPath != "" && !filepath.IsAbs(histPath) {
		if home, err := os.UserHomeDir(); err == nil {
			histPath = filepath.Join(home, histPath)
		}
	}

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if histPath != "" {
		if f, err := os.Open(histPath); err == nil {
			ln.ReadHistory(f)
			f.Close()
		}
		defer func() {
			if f, err := os.Create(histPath); err == nil {
				ln.WriteHistory(f)
				f.Close()
			}
		}()
	}

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigc)
	go func() {
		<-sigc
		ln.Close()
		os.Exit(130)
	}()

	for {
		line, err := ln.Prompt(cfg.REPL.Prompt)
		if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
			fmt.Println()
			return
		}
		if err != nil {
			log.Printf("read line: %v", err)
			return
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		ln.AppendHistory(line)

		out, quit := handleLine(interp, line)
		if quit {
			return
		}
		fmt.Println(out)
	}
}

// handleLine evaluates one input line or runs a meta command, returning the
// text to print.
func handleLine(interp *plic.Interpreter, line string) (string, bool) {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, ":") {
		result, err := interp.EvaluateLine(line)
		if err != nil {
			return "Error: " + err.Error(), false
		}
		return "Result: " + result, false
	}

	cmd, arg, _ := strings.Cut(trimmed, " ")
	switch strings.ToLower(cmd) {
	case ":quit", ":q":
		return "", true
	case ":tokens":
		toks := interp.Tokens(arg)
		parts := make([]string, len(toks))
		for i, t := range toks {
			parts[i] = t.String()
		}
		return strings.Join(parts, " "), false
	case ":capture":
		text, err := interp.Capture(arg)
		if err != nil {
			return "Error: " + err.Error(), false
		}
		return text, false
	case ":builtins":
		return strings.Join(plic.Builtins(), " "), false
	case ":help":
		return helpText, false
	default:
		return "unknown command. Type :help for commands.", false
	}
}
