//go:build !windows

package player

import (
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"syscall"
	"time"

	"github.com/arflix-cli/arflix/constant"
)

func sysProcAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{
		Setpgid: true,
	}
}

func killProcess(cmd *exec.Cmd) error {
	if cmd == nil || cmd.Process == nil {
		return nil
	}
	// Kill the entire process group
	_ = syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	return cmd.Process.Kill()
}

// ipcAddress returns the socket path for name. It lives on the real filesystem since mpv binds it.
func ipcAddress(name string) string {
	dir := filepath.Join(os.TempDir(), constant.Arflix)
	_ = os.MkdirAll(dir, 0o700)
	return filepath.Join(dir, name+".sock")
}

func dialIPC(addr string, timeout time.Duration) (net.Conn, error) {
	return net.DialTimeout("unix", addr, timeout)
}

func removeIPC(addr string) {
	_ = os.Remove(addr)
}
