package main

import (
	"os"

	"github.com/abhisek/critree/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
