//go:build !windows

package process

import (
	"os/exec"
	"syscall"
)

// KillProcessGroup sends SIGKILL to the process group led by pid.
func KillProcessGroup(pid int) {
	_ = syscall.Kill(-pid, syscall.SIGKILL)
}

// setProcessGroup makes cmd the leader of a new process group so that
// interpreters spawned by it die with it.
func setProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}
