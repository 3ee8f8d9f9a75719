package main

import (
	"os"

	"github.com/nikip0/matchsim/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
