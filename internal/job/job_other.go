//go:build !unix

package job

import (
	"os"
	"os/exec"
	"path/filepath"
)

func shellArgs(cmdline string) []string {
	systemRoot := os.Getenv("SYSTEMROOT")
	if systemRoot == "" {
		systemRoot = `C:\Windows`
	}
	powershell := filepath.Join(systemRoot, "System32", "WindowsPowerShell", "v1.0", "powershell.exe")
	return []string{powershell, "-NoProfile", "-NonInteractive", "-Command", cmdline}
}

// Process groups are not available; Die only reaches the immediate child.
func configureProcessGroup(*exec.Cmd) {}

func killProcessGroup(p *os.Process) {
	_ = p.Kill()
}

func signalName(*os.ProcessState) string { return "" }
