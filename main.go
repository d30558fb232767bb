// main is the entry point for the devian-archive CLI.
package main

import (
	"github.com/huangsam/devian-archive/cmd"
	"github.com/huangsam/devian-archive/internal/contract"
	"github.com/huangsam/devian-archive/internal/history"
)

func main() {
	defer history.CloseStores()
	if err := cmd.Execute(); err != nil {
		history.CloseStores()
		contract.LogFatal("Error starting CLI", err)
	}
}
