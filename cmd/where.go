package cmd

import (
	"encoding/json"
	"os"

	"github.com/arflix-cli/arflix/color"
	"github.com/arflix-cli/arflix/resolver"
	"github.com/arflix-cli/arflix/style"
	"github.com/arflix-cli/arflix/where"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

type location struct {
	name  string
	flag  string
	short string
	path  func() string
}

// locations lists the directories arflix reads and writes. Entries without a short flag are not listed by default.
var locations = []location{
	{"Config", "config", "c", where.Config},
	{"Resolvers", "resolvers", "r", where.Resolvers},
	{"Logs", "logs", "l", where.Logs},
	{"Cache", "cache", "", where.Cache},
	{"Responses", "responses", "", resolver.CacheDir},
	{"Subtitles", "subtitles", "", where.Subtitles},
	{"Temp", "temp", "", where.Temp},
}

func init() {
	rootCmd.AddCommand(whereCmd)
	whereCmd.SetOut(os.Stdout)

	for _, l := range locations {
		whereCmd.Flags().BoolP(l.flag, l.short, false, l.name+" path")
	}
	whereCmd.Flags().BoolP("json", "j", false, "Print every path as a JSON object")

	whereCmd.MarkFlagsMutuallyExclusive(append(lo.Map(locations, func(l location, _ int) string {
		return l.flag
	}), "json")...)
}

var whereCmd = &cobra.Command{
	Use:   "where",
	Short: "Show where arflix keeps its files",
	Run: func(cmd *cobra.Command, args []string) {
		for _, l := range locations {
			if lo.Must(cmd.Flags().GetBool(l.flag)) {
				cmd.Println(l.path())
				return
			}
		}

		if lo.Must(cmd.Flags().GetBool("json")) {
			paths := lo.SliceToMap(locations, func(l location) (string, string) {
				return l.flag, l.path()
			})
			handleErr(json.NewEncoder(cmd.OutOrStdout()).Encode(paths))
			return
		}

		header := style.New().Bold(true).Foreground(color.HiPurple).Render
		listed := lo.Filter(locations, func(l location, _ int) bool { return l.short != "" })
		for i, l := range listed {
			if i > 0 {
				cmd.Println()
			}
			cmd.Printf("%s %s\n%s\n", header(l.name+"?"), style.Fg(color.Yellow)("--"+l.flag), l.path())
		}
	},
}
