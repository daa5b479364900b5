package main

import (
	"os"

	"github.com/rpgo/retirement-simulator/cmd/retire-sim/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
