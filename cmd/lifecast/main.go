// main is the entry point for the lifecast CLI.
package main

import (
	"github.com/mfigueroa/lifecast/cmd"
	"github.com/mfigueroa/lifecast/internal/contract"
)

func main() {
	err := cmd.Execute()
	if stopErr := cmd.StopProfiling(); stopErr != nil {
		contract.LogWarn("could not stop profiling", stopErr)
	}
	if err != nil {
		contract.LogFatal("command failed", err)
	}
}
