// main is the entry point for the codetrend CLI.
package main

import (
	"github.com/huangsam/codetrend/cmd"
	"github.com/huangsam/codetrend/internal/contract"
	"github.com/huangsam/codetrend/internal/iocache"
)

func main() {
	err := cmd.Execute()
	iocache.CloseStores()
	if err != nil {
		contract.LogFatal("codetrend failed", err)
	}
}
