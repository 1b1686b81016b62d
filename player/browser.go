package player

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/arflix-cli/arflix/constant"
)

// browserCommand returns the command that opens target with the default URL handler of this OS.
func browserCommand(target string) (*exec.Cmd, error) {
	switch runtime.GOOS {
	case constant.Windows:
		rundll := filepath.Join(os.Getenv("SYSTEMROOT"), "System32", "rundll32.exe")
		return exec.Command(rundll, "url.dll,FileProtocolHandler", target), nil
	case constant.Darwin:
		return exec.Command("open", target), nil
	case constant.Android:
		return exec.Command("termux-open-url", target), nil
	case constant.Linux:
		return exec.Command("xdg-open", target), nil
	default:
		return nil, fmt.Errorf("no default URL handler on %s", runtime.GOOS)
	}
}

// openBrowser starts the default URL handler without waiting for it.
func openBrowser(target string) error {
	cmd, err := browserCommand(target)
	if err != nil {
		return err
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("%s: %w", filepath.Base(cmd.Path), err)
	}
	go cmd.Wait()
	return nil
}
