// Package cmd implements the command-line interface for arflix.
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/arflix-cli/arflix/capability"
	"github.com/arflix-cli/arflix/color"
	"github.com/arflix-cli/arflix/constant"
	"github.com/arflix-cli/arflix/icon"
	"github.com/arflix-cli/arflix/key"
	"github.com/arflix-cli/arflix/log"
	"github.com/arflix-cli/arflix/resolver"
	"github.com/arflix-cli/arflix/style"
	"github.com/arflix-cli/arflix/util"
	"github.com/arflix-cli/arflix/version"
	"github.com/arflix-cli/arflix/where"
	cc "github.com/ivanpirog/coloredcobra"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.Flags().BoolP("version", "v", false, "Print the application version")

	rootCmd.PersistentFlags().StringP("icons", "I", "", "Set the visual icon variant (e.g., nerd, emoji, squares)")
	lo.Must0(rootCmd.RegisterFlagCompletionFunc("icons", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return icon.AvailableVariants(), cobra.ShellCompDirectiveDefault
	}))
	lo.Must0(viper.BindPFlag(key.IconsVariant, rootCmd.PersistentFlags().Lookup("icons")))

	rootCmd.PersistentFlags().StringSliceP("resolver", "R", []string{}, "Specify the resolvers used to find streams")
	lo.Must0(rootCmd.RegisterFlagCompletionFunc("resolver", completionResolvers))
	lo.Must0(viper.BindPFlag(key.DefaultResolvers, rootCmd.PersistentFlags().Lookup("resolver")))

	rootCmd.PersistentFlags().StringP("platform", "P", "", "Force the host platform instead of detecting it")
	lo.Must0(rootCmd.RegisterFlagCompletionFunc("platform", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return lo.Map(capability.Platforms(), func(p capability.Platform, _ int) string {
			return string(p)
		}), cobra.ShellCompDirectiveNoFileComp
	}))
	lo.Must0(viper.BindPFlag(key.PlatformOverride, rootCmd.PersistentFlags().Lookup("platform")))

	helpFunc := rootCmd.HelpFunc()
	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		helpFunc(cmd, args)
		version.Notify()
	})

	// Leftover IPC sockets and subtitle files from previous sessions.
	go func() {
		_ = util.Delete(where.Temp())
	}()
}

func completionResolvers(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return resolver.Names(), cobra.ShellCompDirectiveNoFileComp
}

// rootCmd defines the entry point for the arflix application.
var rootCmd = &cobra.Command{
	Use:   constant.Arflix + " [query]",
	Short: "Pick the best playable stream for this device and play it",
	Long: constant.Logo + "\n" +
		style.New().Italic(true).Foreground(color.HiRed).Render("    - Pick the best playable stream for this device and play it"),
	Args: cobra.ArbitraryArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if cmd.Flags().Changed("version") {
			versionCmd.Run(versionCmd, args)
			return
		}

		if len(args) == 0 {
			handleErr(cmd.Help())
			return
		}

		playCmd.Run(playCmd, args)
	},
}

// Execute initializes child command routing and processes the CLI entry point.
func Execute() {
	if viper.GetBool(key.CliColored) {
		cc.Init(&cc.Config{
			RootCmd:       rootCmd,
			Headings:      cc.HiCyan + cc.Bold + cc.Underline,
			Commands:      cc.HiYellow + cc.Bold,
			Example:       cc.Italic,
			ExecName:      cc.Bold,
			Flags:         cc.Bold,
			FlagsDataType: cc.Italic + cc.HiBlue,
		})
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func handleErr(err error) {
	if err != nil {
		log.Error(err)
		_, _ = fmt.Fprintf(os.Stderr, "%s %s\n", icon.Get(icon.Fail), strings.Trim(err.Error(), " \n"))
		os.Exit(1)
	}
}
