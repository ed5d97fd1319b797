// Package main is the entry point for the marquee application.
package main

import (
	"github.com/samber/lo"

	"github.com/marquee-cli/marquee/cmd"
	"github.com/marquee-cli/marquee/config"
	"github.com/marquee-cli/marquee/log"
	"github.com/marquee-cli/marquee/preload"
)

func main() {
	lo.Must0(config.Setup())
	lo.Must0(log.Setup())

	// Expired media cache entries are reaped in the background.
	go preload.CollectGarbage()

	cmd.Execute()
}
