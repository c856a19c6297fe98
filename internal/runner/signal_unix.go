//go:build unix

package runner

import (
	"os"
	"strconv"
	"syscall"

	"golang.org/x/sys/unix"
)

// signaled reports the signal that terminated the process, if any.
func signaled(state *os.ProcessState) (name string, num int, ok bool) {
	if state == nil {
		return "", 0, false
	}
	ws, isWS := state.Sys().(syscall.WaitStatus)
	if !isWS || !ws.Signaled() {
		return "", 0, false
	}
	sig := ws.Signal()
	name = unix.SignalName(sig)
	if name == "" {
		name = "signal " + strconv.Itoa(int(sig))
	}
	return name, int(sig), true
}
