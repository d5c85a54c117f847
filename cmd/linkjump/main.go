package main

import (
	"log"

	"github.com/MrSnakeDoc/linkjump/internal/app"
)

func main() {
	if err := app.New().Run(); err != nil {
		log.Fatalf("❌ linkjump failed to start: %v", err)
	}
}
