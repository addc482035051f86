package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	plic "github.com/rphilander/plic/core"
)

func main() {
	cfg, err := plic.LoadConfig(plic.ConfigPath())
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	core, err := plic.NewCore(cfg)
	if err != nil {
		log.Fatalf("failed to start core: %v", err)
	}

	// Handle shutdown signals
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigs
		log.Println("shutting down...")
		core.Shutdown()
		os.Exit(0)
	}()

	traceDB := cfg.TraceDB
	if traceDB == "" {
		traceDB = "(memory only)"
	}
	log.Printf("plic core listening (socket: %s, traces: %s, max traces: %d)", cfg.Socket, traceDB, cfg.MaxTraces)
	core.Run()
}
