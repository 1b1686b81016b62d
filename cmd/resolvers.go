package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/user"

	"github.com/arflix-cli/arflix/color"
	"github.com/arflix-cli/arflix/icon"
	"github.com/arflix-cli/arflix/resolver"
	"github.com/arflix-cli/arflix/style"
	"github.com/arflix-cli/arflix/util"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(resolversCmd)
}

// resolversCmd provides a parent command for managing Lua stream resolvers.
var resolversCmd = &cobra.Command{
	Use:     "resolvers",
	Aliases: []string{"resolver"},
	Short:   "Manage the Lua scripts that find streams",
}

func init() {
	resolversCmd.AddCommand(resolversListCmd)

	resolversListCmd.Flags().BoolP("raw", "r", false, "Print only the resolver names")
	resolversListCmd.SetOut(os.Stdout)
}

// resolversListCmd displays the installed resolvers with their metadata.
var resolversListCmd = &cobra.Command{
	Use:   "list",
	Short: "Display the installed resolvers",
	Run: func(cmd *cobra.Command, args []string) {
		scripts, err := resolver.Scripts()
		handleErr(err)

		if lo.Must(cmd.Flags().GetBool("raw")) {
			for _, s := range scripts {
				cmd.Println(s.Name)
			}
			return
		}

		if len(scripts) == 0 {
			cmd.Println(style.Faint("No resolvers installed"))
			return
		}

		headerStyle := style.New().Foreground(color.HiBlue).Bold(true).Render
		cmd.Println(headerStyle(fmt.Sprintf("%s installed", util.Quantify(len(scripts), "resolver", "resolvers"))))
		for _, s := range scripts {
			line := style.Fg(color.Yellow)(s.Name)
			if s.Meta.URL != "" {
				line += " " + style.Faint(s.Meta.URL)
			}
			if s.Meta.Author != "" {
				line += " " + style.Italic("by "+s.Meta.Author)
			}
			cmd.Println(line)
		}
	},
}

func init() {
	resolversCmd.AddCommand(resolversRemoveCmd)

	resolversRemoveCmd.Flags().StringArrayP("name", "n", []string{}, "Specify the name of the resolver(s) to uninstall")
	lo.Must0(resolversRemoveCmd.RegisterFlagCompletionFunc("name", completionResolvers))
	lo.Must0(resolversRemoveCmd.MarkFlagRequired("name"))
}

// resolversRemoveCmd uninstalls resolver scripts.
var resolversRemoveCmd = &cobra.Command{
	Use:   "remove",
	Short: "Permanently uninstall the specified resolvers",
	Run: func(cmd *cobra.Command, args []string) {
		for _, name := range lo.Must(cmd.Flags().GetStringArray("name")) {
			handleErr(resolver.Remove(name))
			fmt.Printf("%s successfully removed %s\n", icon.Get(icon.Success), style.Fg(color.Yellow)(name))
		}
	},
}

func init() {
	resolversCmd.AddCommand(resolversInstallCmd)
}

// resolversInstallCmd downloads resolver scripts by URL.
var resolversInstallCmd = &cobra.Command{
	Use:   "install [url...]",
	Short: "Download and install resolver scripts",
	Long: `Download resolver scripts from the given URLs into the resolvers directory.
Scripts that are already installed with the same content are left untouched.`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		for _, url := range args {
			erase := util.PrintErasable(fmt.Sprintf("%s Downloading %s...", icon.Get(icon.Progress), url))
			path, changed, err := resolver.Install(context.Background(), url)
			erase()
			handleErr(err)

			if changed {
				fmt.Printf("%s installed %s\n", icon.Get(icon.Success), style.Fg(color.Yellow)(path))
			} else {
				fmt.Printf("%s %s is up to date\n", icon.Get(icon.Success), style.Fg(color.Yellow)(path))
			}
		}
	},
}

func init() {
	resolversCmd.AddCommand(resolversGenCmd)

	resolversGenCmd.Flags().StringP("name", "n", "", "The display name of the new resolver")
	resolversGenCmd.Flags().StringP("url", "u", "", "The base URL of the site the resolver queries")

	lo.Must0(resolversGenCmd.MarkFlagRequired("name"))
	lo.Must0(resolversGenCmd.MarkFlagRequired("url"))
}

// resolversGenCmd scaffolds a boilerplate resolver script.
var resolversGenCmd = &cobra.Command{
	Use:   "gen",
	Short: "Scaffold a new Lua resolver script using a predefined template",
	Long:  `Generate a boilerplate Lua resolver script with the Streams function and metadata.`,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.SetOut(os.Stdout)

		author := "Anonymous"
		if usr, err := user.Current(); err == nil {
			author = usr.Username
		}

		path, err := resolver.Generate(
			lo.Must(cmd.Flags().GetString("name")),
			lo.Must(cmd.Flags().GetString("url")),
			author,
		)
		handleErr(err)

		cmd.Println(path)
	},
}

func init() {
	resolversCmd.AddCommand(resolversRunCmd)

	resolversRunCmd.Flags().BoolP("json", "j", false, "Print the candidates as a JSON array")
	resolversRunCmd.SetOut(os.Stdout)
}

// resolversRunCmd runs one resolver and prints what it returns, for script development.
var resolversRunCmd = &cobra.Command{
	Use:               "run [name] [query]",
	Short:             "Run a resolver and print the candidates it returns",
	Args:              cobra.ExactArgs(2),
	ValidArgsFunction: completionResolvers,
	Run: func(cmd *cobra.Command, args []string) {
		script, ok := resolver.Get(args[0])
		if !ok {
			handleErr(fmt.Errorf("resolver %s is not installed", args[0]))
		}

		r, err := script.Load()
		handleErr(err)
		defer r.Close()

		candidates, err := r.Streams(context.Background(), args[1])
		handleErr(err)

		if lo.Must(cmd.Flags().GetBool("json")) {
			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			handleErr(encoder.Encode(candidates))
			return
		}

		for _, c := range candidates {
			cmd.Printf("%s %s\n", style.Fg(color.Purple)(c.DisplayTitle()), style.Faint(c.URL))
		}
	},
}
