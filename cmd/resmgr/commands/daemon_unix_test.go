//go:build !windows

package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

func TestIsProcessRunning_NonexistentFile(t *testing.T) {
	pid, running := isProcessRunning(filepath.Join(t.TempDir(), "nonexistent.pid"))
	if running || pid != 0 {
		t.Errorf("isProcessRunning() = (%d, %v), want (0, false)", pid, running)
	}
}

func TestIsProcessRunning_InvalidPID(t *testing.T) {
	pidPath := filepath.Join(t.TempDir(), "invalid.pid")
	if err := os.WriteFile(pidPath, []byte("notanumber"), 0644); err != nil {
		t.Fatalf("failed to write pid file: %v", err)
	}

	if pid, running := isProcessRunning(pidPath); running || pid != 0 {
		t.Errorf("isProcessRunning() = (%d, %v), want (0, false)", pid, running)
	}
}

func TestIsProcessRunning_DeadProcess(t *testing.T) {
	pidPath := filepath.Join(t.TempDir(), "dead.pid")
	if err := os.WriteFile(pidPath, []byte("9999999"), 0644); err != nil {
		t.Fatalf("failed to write pid file: %v", err)
	}

	if pid, running := isProcessRunning(pidPath); running || pid != 0 {
		t.Errorf("isProcessRunning() = (%d, %v), want (0, false)", pid, running)
	}
}

func TestIsProcessRunning_CurrentProcess(t *testing.T) {
	currentPID := os.Getpid()
	pidPath := filepath.Join(t.TempDir(), "current.pid")
	if err := os.WriteFile(pidPath, []byte(fmt.Sprintf("%d\n", currentPID)), 0644); err != nil {
		t.Fatalf("failed to write pid file: %v", err)
	}

	pid, running := isProcessRunning(pidPath)
	if !running || pid != currentPID {
		t.Errorf("isProcessRunning() = (%d, %v), want (%d, true)", pid, running, currentPID)
	}
}
