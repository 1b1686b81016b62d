package cmd

import (
	"encoding/json"
	"os"
	"sort"

	"github.com/arflix-cli/arflix/color"
	"github.com/arflix-cli/arflix/config"
	"github.com/arflix-cli/arflix/style"
	"github.com/arflix-cli/arflix/where"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(envCmd)
	envCmd.SetOut(os.Stdout)
	envCmd.Flags().BoolP("set-only", "s", false, "Only show variables that are set")
	envCmd.Flags().BoolP("unset-only", "u", false, "Only show variables that are not set")
	envCmd.Flags().BoolP("json", "j", false, "Print the variables as a JSON object")
	envCmd.MarkFlagsMutuallyExclusive("set-only", "unset-only")
}

// envVariables maps every supported environment variable to its value in this process.
func envVariables() map[string]string {
	vars := map[string]string{where.EnvConfigPath: os.Getenv(where.EnvConfigPath)}
	for _, k := range config.EnvExposed {
		field := config.Default[k]
		name := field.Env()
		vars[name] = os.Getenv(name)
	}
	return vars
}

var envCmd = &cobra.Command{
	Use:   "env",
	Short: "Show the environment variables that override the config",
	Run: func(cmd *cobra.Command, args []string) {
		setOnly := lo.Must(cmd.Flags().GetBool("set-only"))
		unsetOnly := lo.Must(cmd.Flags().GetBool("unset-only"))

		vars := lo.PickBy(envVariables(), func(_, value string) bool {
			set := value != ""
			return !(setOnly && !set) && !(unsetOnly && set)
		})

		if lo.Must(cmd.Flags().GetBool("json")) {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			handleErr(enc.Encode(vars))
			return
		}

		names := lo.Keys(vars)
		sort.Strings(names)

		nameStyle := style.New().Bold(true).Foreground(color.Purple).Render
		for _, name := range names {
			value := style.Fg(color.Red)("unset")
			if v := vars[name]; v != "" {
				value = style.Fg(color.Green)(v)
			}
			cmd.Printf("%s=%s\n", nameStyle(name), value)
		}
	},
}
