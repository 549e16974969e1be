//go:build !windows

package launch

import (
	"os/exec"
	"syscall"
)

// detach runs the game in its own session so it survives the launcher
func detach(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
}
