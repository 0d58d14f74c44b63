package main

import (
	"log"

	"github.com/benidevo/mentormatch/internal/app"
	"github.com/benidevo/mentormatch/internal/config"
)

func main() {
	cfg := config.NewSettings()
	a := app.New(cfg)

	if err := a.Run(); err != nil {
		log.Fatalf("failed to start the matching engine: %v", err)
	}

	a.WaitForShutdown()
}
