package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/template"

	"github.com/arflix-cli/arflix/capability"
	"github.com/arflix-cli/arflix/color"
	"github.com/arflix-cli/arflix/style"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(capsCmd)

	capsCmd.Flags().BoolP("json", "j", false, "Format the output as a JSON string")
	capsCmd.Flags().StringP("check", "c", "", "Report whether a codec or container token is supported, e.g. audio:dts")
	capsCmd.SetOut(os.Stdout)
}

var capsTemplate = lo.Must(template.New("caps").Funcs(template.FuncMap{
	"faint":   style.Faint,
	"bold":    style.Bold,
	"magenta": style.Fg(color.Purple),
	"yesno": func(b bool) string {
		return lo.Ternary(b, style.Fg(color.Green)("yes"), style.Fg(color.Red)("no"))
	},
	"list": func(items []string) string {
		if len(items) == 0 {
			return style.Faint("none")
		}
		return strings.Join(items, ", ")
	},
}).Parse(`{{ magenta "▇▇▇" }} {{ magenta (print .Platform) }}

  {{ faint "Max height" }}      {{ bold (print .MaxHeight) }}
  {{ faint "HDR" }}             {{ yesno .SupportsHDR }}
  {{ faint "HLS" }}             {{ yesno .SupportsHLS }}
  {{ faint "DASH" }}            {{ yesno .SupportsDASH }}
  {{ faint "Containers" }}      {{ list .Containers }}
  {{ faint "Audio allowed" }}   {{ list .AudioAllowed }}
  {{ faint "Audio denied" }}    {{ list .AudioDenied }}
  {{ faint "Video allowed" }}   {{ list .VideoAllowed }}
  {{ faint "Video denied" }}    {{ list .VideoDenied }}
`))

// capsCmd displays the detected decode capabilities of this device.
var capsCmd = &cobra.Command{
	Use:     "caps",
	Aliases: []string{"capabilities"},
	Short:   "Display the decode capabilities detected for this device",
	Run: func(cmd *cobra.Command, args []string) {
		caps := capability.Get()

		if check := lo.Must(cmd.Flags().GetString("check")); check != "" {
			kind, token, err := parseCapsCheck(check)
			handleErr(err)

			supported := capability.IsSupported(token, caps, kind)
			cmd.Printf("%s %s %s\n", kind, style.Bold(token), lo.Ternary(supported, style.Fg(color.Green)("supported"), style.Fg(color.Red)("unsupported")))
			if !supported {
				os.Exit(1)
			}
			return
		}

		if lo.Must(cmd.Flags().GetBool("json")) {
			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			handleErr(encoder.Encode(caps))
			return
		}

		handleErr(capsTemplate.Execute(cmd.OutOrStdout(), caps))
	},
}

func parseCapsCheck(s string) (capability.Kind, string, error) {
	kindName, token, ok := strings.Cut(s, ":")
	if !ok || token == "" {
		return 0, "", fmt.Errorf("expected kind:token, got %q", s)
	}

	for _, kind := range []capability.Kind{capability.KindContainer, capability.KindAudio, capability.KindVideo} {
		if kind.String() == strings.ToLower(kindName) {
			return kind, token, nil
		}
	}
	return 0, "", fmt.Errorf("unknown kind %q, expected container, audio or video", kindName)
}
