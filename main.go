// main is the entry point for the healthtab CLI.
package main

import (
	"github.com/huangsam/healthtab/cmd"
	"github.com/huangsam/healthtab/internal/contract"
	"github.com/huangsam/healthtab/internal/iocache"
)

func main() {
	cmd.SetCacheManager(iocache.Manager)

	err := cmd.Execute()

	iocache.CloseStores()
	if stopErr := cmd.StopProfiling(); stopErr != nil {
		contract.LogWarn("Failed to stop profiling", stopErr)
	}
	if closeErr := cmd.CloseLog(); closeErr != nil {
		contract.LogWarn("Failed to close log file", closeErr)
	}
	if err != nil {
		contract.LogFatal("Command failed", err)
	}
}
