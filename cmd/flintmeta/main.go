package main

import (
	"log"

	"github.com/MrSnakeDoc/flintmeta/internal/app"
)

func main() {
	a, err := app.New()
	if err != nil {
		log.Fatalf("❌ flintmeta failed to initialize: %v", err)
	}
	if err := a.Run(); err != nil {
		log.Fatalf("❌ flintmeta failed to start: %v", err)
	}
}
