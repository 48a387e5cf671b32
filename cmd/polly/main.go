package main

import (
	"os"

	"github.com/lawlawrd/polly/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
