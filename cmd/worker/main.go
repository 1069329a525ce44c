package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/wastewatch/foodwaste-backend/config"
	"github.com/wastewatch/foodwaste-backend/internal/bootstrap"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: worker sweep|schedule")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rt, err := bootstrap.BuildRuntime(ctx, cfg)
	if err != nil {
		log.Fatalf("startup: %v", err)
	}
	defer rt.Close()

	switch os.Args[1] {
	case "sweep":
		res, err := rt.Sweeper.RunOnce(ctx)
		if err != nil {
			log.Fatalf("sweep: %v", err)
		}
		if res.Skipped {
			log.Println("sweep skipped: lock held by another instance")
			return
		}
		log.Printf("sweep done: scanned=%d changed=%d", res.Scanned, res.Changed)
	case "schedule":
		if cfg.Sweep.Schedule == "" {
			log.Fatal("SWEEP_SCHEDULE is required for schedule")
		}
		if err := rt.Sweeper.Start(ctx); err != nil {
			log.Fatalf("sweep: %v", err)
		}
		<-ctx.Done()
	default:
		log.Fatalf("unknown command: %s", os.Args[1])
	}
}
