package main

import (
	"os"

	"github.com/pulseroom/meeting-pipeline/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
