package version

import (
	"fmt"

	"github.com/arflix-cli/arflix/color"
	"github.com/arflix-cli/arflix/constant"
	"github.com/arflix-cli/arflix/icon"
	"github.com/arflix-cli/arflix/key"
	"github.com/arflix-cli/arflix/log"
	"github.com/arflix-cli/arflix/style"
	"github.com/arflix-cli/arflix/util"
	"github.com/spf13/viper"
)

// Notify prints a notice when a newer release exists. Failed checks are silent.
func Notify() {
	if !viper.GetBool(key.CliVersionCheck) {
		return
	}

	erase := util.PrintErasable(fmt.Sprintf("%s Checking if new version is available...", icon.Get(icon.Progress)))
	version, err := Latest()
	erase()
	if err != nil {
		log.Debugf("version check: %v", err)
		return
	}

	if comp, err := Compare(version, constant.Version); err != nil || comp <= 0 {
		return
	}

	fmt.Printf(`
%s New version is available %s %s
%s

`,
		style.Fg(color.Green)("▇▇▇"),
		style.Bold(version),
		style.Faint(fmt.Sprintf("(You're on %s)", constant.Version)),
		style.Faint("https://github.com/arflix-cli/arflix/releases/tag/v"+version),
	)

}
