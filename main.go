// Command arflix resolves streams for a title, ranks them against what this device can decode and plays the best one.
package main

import (
	"time"

	"github.com/arflix-cli/arflix/cmd"
	"github.com/arflix-cli/arflix/config"
	"github.com/arflix-cli/arflix/internal/cache"
	"github.com/arflix-cli/arflix/log"
	"github.com/samber/lo"
)

func main() {
	lo.Must0(config.Setup())
	lo.Must0(log.Setup())

	go cache.CollectGarbage(cache.Dirs(), time.Now())

	cmd.Execute()
}
