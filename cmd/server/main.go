package main

import (
	"context"
	"log"

	"github.com/Ratheshan03/neucon-labs-sub000/internal/app"
)

func main() {
	a, err := app.NewApp()
	if err != nil {
		log.Fatalf("init: %v", err)
	}

	if err := a.Run(context.Background()); err != nil {
		log.Fatalf("run: %v", err)
	}
}
