//go:build !windows
// +build !windows

package utils

import (
	"os/exec"
	"syscall"
)

// ConfigureAsProcessGroup makes the command leader of its own process
// group, so that helpers spawned by ffmpeg die together with it.
func ConfigureAsProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

func KillProcessGroup(cmd *exec.Cmd) error {
	if cmd == nil || cmd.Process == nil {
		return nil
	}

	pgid, err := syscall.Getpgid(cmd.Process.Pid)
	if err != nil {
		return cmd.Process.Kill()
	}

	return syscall.Kill(-pgid, syscall.SIGKILL)
}
