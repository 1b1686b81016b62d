//go:build windows

package player

import (
	"net"
	"os/exec"
	"syscall"
	"time"

	"gopkg.in/natefinch/npipe.v2"
)

func sysProcAttr() *syscall.SysProcAttr {
	// CREATE_NO_WINDOW
	return &syscall.SysProcAttr{CreationFlags: 0x08000000}
}

func killProcess(cmd *exec.Cmd) error {
	if cmd == nil || cmd.Process == nil {
		return nil
	}
	return cmd.Process.Kill()
}

// ipcAddress returns the named pipe for name.
func ipcAddress(name string) string {
	return `\\.\pipe\` + name
}

func dialIPC(addr string, timeout time.Duration) (net.Conn, error) {
	return npipe.DialTimeout(addr, timeout)
}

// removeIPC is a no-op, named pipes disappear with their server.
func removeIPC(string) {}
