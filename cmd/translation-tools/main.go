package main

import (
	"os"

	"github.com/Pluto731/Translation-tools/internal/app"
)

func main() {
	os.Exit(app.Run(os.Args[1:]))
}
