package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"

	"github.com/arflix-cli/arflix/capability"
	"github.com/arflix-cli/arflix/constant"
	"github.com/arflix-cli/arflix/icon"
	"github.com/arflix-cli/arflix/key"
	"github.com/arflix-cli/arflix/player"
	"github.com/arflix-cli/arflix/resolver"
	"github.com/arflix-cli/arflix/style"
	"github.com/arflix-cli/arflix/util"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.SetOut(os.Stdout)
}

// checkCmd verifies that the engine of this platform and at least one resolver are available.
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify that playback dependencies are installed",
	Run: func(cmd *cobra.Command, args []string) {
		platform := capability.Get().Platform
		cmd.Printf("%s platform %s\n", icon.Get(icon.Success), style.Bold(string(platform)))

		dep, err := engineDependency(platform)
		if err != nil {
			printMissingDependencyError(dep)
			os.Exit(1)
		}
		if dep != "" {
			cmd.Printf("%s %s found\n", icon.Get(icon.Success), style.Bold(dep))
		}

		if n := len(resolver.Names()); n > 0 {
			cmd.Printf("%s %s installed\n", icon.Get(icon.Success), util.Quantify(n, "resolver", "resolvers"))
		} else {
			cmd.Printf("%s no resolvers installed, only --url and --input can be played\n", icon.Get(icon.Fail))
		}
	},
}

// engineDependency returns the executable the engine of platform launches, and an error when it is missing.
// The web engine hands off to the default URL handler and needs nothing.
func engineDependency(platform capability.Platform) (string, error) {
	switch platform {
	case capability.Web:
		return "", nil
	case capability.Android:
		_, err := exec.LookPath("am")
		return "am", err
	case capability.Apple:
		if path, ok := player.FindIINA(); ok {
			return path, nil
		}
	}

	mpv := viper.GetString(key.PlayerMPVPath)
	_, err := exec.LookPath(mpv)
	return mpv, err
}

func printMissingDependencyError(dep string) {
	var installCmd string
	switch runtime.GOOS {
	case constant.Darwin:
		installCmd = "brew install mpv"
	case constant.Linux:
		installCmd = "sudo apt install mpv"
	case constant.Windows:
		installCmd = "scoop install mpv"
	case constant.Android:
		installCmd = "pkg install termux-am"
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(style.HiRed).
		Padding(1, 2).
		Margin(1, 0)

	title := style.New().Bold(true).Foreground(style.HiRed).Render(fmt.Sprintf("%s Error: Missing Dependency", icon.Get(icon.Fail)))
	body := style.New().Foreground(style.Text).Render(fmt.Sprintf("The required dependency '%s' was not found in your PATH.", dep))

	suggestion := ""
	if installCmd != "" {
		suggestion = fmt.Sprintf("\n\nTo install it, try running:\n  %s", style.New().Foreground(style.AccentColor).Bold(true).Render(installCmd))
	}

	fmt.Println(box.Render(
		lipgloss.JoinVertical(lipgloss.Left,
			title,
			"\n",
			body,
			suggestion,
		),
	))
}
