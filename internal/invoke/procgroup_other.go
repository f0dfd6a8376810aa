//go:build !unix

package invoke

import "os/exec"

func killGroup(cmd *exec.Cmd) {}
