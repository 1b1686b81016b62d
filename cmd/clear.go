package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/arflix-cli/arflix/filesystem"
	"github.com/arflix-cli/arflix/icon"
	"github.com/arflix-cli/arflix/internal/cache"
	"github.com/arflix-cli/arflix/resolver"
	"github.com/arflix-cli/arflix/util"
	"github.com/arflix-cli/arflix/where"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

type clearTarget struct {
	name  string
	flag  string
	short string
	path  func() string
}

var clearTargets = []clearTarget{
	{"cache", "cache", "c", where.Cache},
	{"subtitle cache", "subtitles", "s", where.Subtitles},
	{"resolver responses", "responses", "r", resolver.CacheDir},
	{"temporary files", "temp", "t", where.Temp},
}

func init() {
	rootCmd.AddCommand(clearCmd)
	clearCmd.SetOut(os.Stdout)

	for _, target := range clearTargets {
		clearCmd.Flags().BoolP(target.flag, target.short, false, "Clear the "+target.name)
	}
	clearCmd.Flags().BoolP("expired", "e", false, "Only remove cached files older than their configured lifetime")
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove cached and temporary files",
	Run: func(cmd *cobra.Command, args []string) {
		if lo.Must(cmd.Flags().GetBool("expired")) {
			removed := cache.CollectGarbage(cache.Dirs(), time.Now())
			cmd.Printf("%s %s removed\n", icon.Get(icon.Success), util.Quantify(removed, "expired file", "expired files"))
			return
		}

		selected := lo.Filter(clearTargets, func(t clearTarget, _ int) bool {
			return lo.Must(cmd.Flags().GetBool(t.flag))
		})
		if len(selected) == 0 {
			handleErr(cmd.Help())
			return
		}

		for _, target := range selected {
			erase := util.PrintErasable(fmt.Sprintf("%s Clearing %s...", icon.Get(icon.Progress), target.name))
			err := filesystem.API().RemoveAll(target.path())
			erase()
			handleErr(err)
			cmd.Printf("%s %s cleared\n", icon.Get(icon.Success), util.Capitalize(target.name))
		}
	},
}
