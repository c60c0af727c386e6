package main

import (
	"log"

	"github.com/AlvinoWJ/midiland-dev/internal/app"
)

func main() {
	if err := app.Run(); err != nil {
		log.Fatalf("midichat: %v", err)
	}
}
