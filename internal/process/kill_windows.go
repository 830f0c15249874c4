//go:build windows

package process

import (
	"os/exec"
	"strconv"
)

// KillProcessGroup terminates pid together with the interpreters it spawned.
func KillProcessGroup(pid int) {
	kill := exec.Command("taskkill", "/F", "/T", "/PID", strconv.Itoa(pid)) // #nosec G204 -- fixed command, numeric PID
	_ = kill.Run()
}

// setProcessGroup does nothing: taskkill /T follows the process tree.
func setProcessGroup(*exec.Cmd) {}
