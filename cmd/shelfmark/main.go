package main

import (
	"log"

	"github.com/shelfmark/shelfmark/internal/app"
)

func main() {
	if err := app.New().Run(); err != nil {
		log.Fatalf("shelfmark failed to start: %v", err)
	}
}
