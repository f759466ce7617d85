// Package shellexec provides cross-platform shell resolution for the
// components that launch executor subprocesses. Both functions are pure
// queries with no side effects and no interaction with the log schema.
package shellexec

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
)

// GetShellCommand returns the shell program and its single-command flag for
// the current platform: ("cmd", "/C") on Windows, otherwise ("bash", "-c")
// when bash is installed, falling back to ("sh", "-c").
func GetShellCommand() (string, string) {
	if runtime.GOOS == "windows" {
		return "cmd", "/C"
	}
	if _, err := os.Stat("/bin/bash"); err == nil {
		return "bash", "-c"
	}
	return "sh", "-c"
}

// ResolveExecutablePath resolves name against the system search path and
// returns a normalized absolute path. A miss is a normal negative result,
// not an error: ok is false and the path is empty.
func ResolveExecutablePath(name string) (string, bool) {
	path, err := exec.LookPath(name)
	if err != nil {
		return "", false
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", false
	}
	return filepath.Clean(abs), true
}
