package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/AlecAivazis/survey/v2"
	"github.com/arflix-cli/arflix/auth"
	"github.com/arflix-cli/arflix/color"
	"github.com/arflix-cli/arflix/icon"
	"github.com/arflix-cli/arflix/style"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(authCmd)
}

// authCmd manages the per-host credentials sent to resolver and subtitle hosts.
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage credentials for resolver and subtitle hosts",
	Long: `Manage bearer tokens stored in the system keyring. A token is sent with every
request a resolver or subtitle fetch makes to its host.`,
}

func hostArg(args []string) string {
	host := auth.Host(args[0])
	if host == "" {
		handleErr(fmt.Errorf("invalid host %q", args[0]))
	}
	return host
}

func init() {
	authCmd.AddCommand(authSetCmd)
	authSetCmd.Flags().StringP("token", "t", "", "The token to store, prompted for when omitted")
}

// authSetCmd stores a token for a host.
var authSetCmd = &cobra.Command{
	Use:   "set [host or url]",
	Short: "Store a token for a host",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		host := hostArg(args)

		token := lo.Must(cmd.Flags().GetString("token"))
		if token == "" {
			handleErr(survey.AskOne(&survey.Password{
				Message: fmt.Sprintf("Token for %s:", host),
			}, &token, survey.WithValidator(survey.Required)))
		}

		handleErr(auth.SetToken(host, token))
		fmt.Printf("%s stored token for %s\n", style.Fg(color.Green)(icon.Get(icon.Success)), style.Fg(color.Purple)(host))
	},
}

func init() {
	authCmd.AddCommand(authGetCmd)
	authGetCmd.SetOut(os.Stdout)
}

// authGetCmd prints the token stored for a host.
var authGetCmd = &cobra.Command{
	Use:   "get [host or url]",
	Short: "Print the token stored for a host",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		host := hostArg(args)

		token, err := auth.Token(host)
		if auth.IsNotFound(err) {
			handleErr(fmt.Errorf("no token stored for %s", host))
		}
		handleErr(err)

		cmd.Println(token)
	},
}

func init() {
	authCmd.AddCommand(authRemoveCmd)
}

// authRemoveCmd deletes the token stored for a host.
var authRemoveCmd = &cobra.Command{
	Use:     "remove [host or url]",
	Aliases: []string{"delete"},
	Short:   "Delete the token stored for a host",
	Args:    cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		host := hostArg(args)

		err := auth.DeleteToken(host)
		if auth.IsNotFound(err) {
			err = errors.New("no token stored for " + host)
		}
		handleErr(err)

		fmt.Printf("%s removed token for %s\n", style.Fg(color.Green)(icon.Get(icon.Success)), style.Fg(color.Purple)(host))
	},
}
