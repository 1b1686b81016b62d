package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"reflect"
	"slices"
	"strings"

	"github.com/arflix-cli/arflix/capability"
	"github.com/arflix-cli/arflix/color"
	"github.com/arflix-cli/arflix/icon"
	"github.com/arflix-cli/arflix/selector"
	"github.com/arflix-cli/arflix/style"
	"github.com/invopop/jsonschema"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(classifyCmd)

	classifyCmd.Flags().StringArrayP("url", "u", []string{}, "Classify these URLs instead of asking the resolvers")
	classifyCmd.Flags().StringP("input", "i", "", "Read stream candidates as a JSON array from a file, - for stdin")
	classifyCmd.MarkFlagsMutuallyExclusive("url", "input")

	classifyCmd.Flags().BoolP("json", "j", false, "Print the classifications as a JSON array")
	classifyCmd.Flags().Bool("schema", false, "Print the JSON schema of the output and exit")
	classifyCmd.Flags().BoolP("all", "a", false, "Include candidates this device cannot play")

	classifyCmd.SetOut(os.Stdout)
}

// classifyCmd shows how candidates score against the capabilities of this device.
var classifyCmd = &cobra.Command{
	Use:   "classify [query]",
	Short: "Classify and rank stream candidates for this device without playing them",
	Run: func(cmd *cobra.Command, args []string) {
		if lo.Must(cmd.Flags().GetBool("schema")) {
			handleErr(json.NewEncoder(cmd.OutOrStdout()).Encode(classificationSchema()))
			return
		}

		candidates, err := gatherCandidates(context.Background(), cmd, strings.Join(args, " "))
		handleErr(err)

		caps := capability.Get()

		var classified []selector.Classified
		if lo.Must(cmd.Flags().GetBool("all")) {
			classified = slices.Clone(selector.ClassifyAll(candidates, caps))
			slices.SortStableFunc(classified, selector.ByScore)
		} else {
			classified = selector.Rank(candidates, caps)
		}

		if lo.Must(cmd.Flags().GetBool("json")) {
			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			handleErr(encoder.Encode(lo.Ternary(classified == nil, []selector.Classified{}, classified)))
			return
		}

		if len(classified) == 0 {
			cmd.Printf("%s none of %d candidates is supported on %s\n", icon.Get(icon.Fail), len(candidates), caps.Platform)
			return
		}

		for i, c := range classified {
			cmd.Println(formatClassified(i+1, c))
		}
	},
}

func formatClassified(rank int, c selector.Classified) string {
	mark := lo.Ternary(c.Playable, icon.Playable, icon.Unplayable)

	details := lo.Compact([]string{c.Container, c.VideoCodec, c.AudioCodec})
	if c.Resolution > 0 {
		details = append(details, fmt.Sprintf("%dp", c.Resolution))
	}
	if c.HDR {
		details = append(details, lo.CoalesceOrEmpty(c.HDRFormat, "hdr"))
	}

	line := fmt.Sprintf(
		"%s %s %s %s",
		style.Faint(fmt.Sprintf("%2d.", rank)),
		icon.Get(mark),
		style.Fg(color.Purple)(c.Candidate.DisplayTitle()),
		style.Fg(color.Yellow)(fmt.Sprintf("%d", c.Score)),
	)

	if len(details) > 0 {
		line += " " + style.Faint(strings.Join(details, " · "))
	}
	if len(c.Flags) > 0 {
		line += " " + style.Fg(color.Orange)(strings.Join(c.Flags, ", "))
	}
	if len(c.Reasons) > 0 {
		line += "\n      " + style.Fg(color.Red)(strings.Join(c.Reasons, "; "))
	}
	return line
}

func classificationSchema() *jsonschema.Schema {
	reflector := new(jsonschema.Reflector)
	reflector.Anonymous = true
	reflector.Namer = func(t reflect.Type) string {
		return t.Name()
	}
	return reflector.Reflect([]selector.Classified{})
}
