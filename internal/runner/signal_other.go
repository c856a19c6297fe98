//go:build !unix

package runner

import "os"

func signaled(*os.ProcessState) (string, int, bool) {
	return "", 0, false
}
