//go:build windows

package supervisor

import "errors"

func getsid(int) (int, error) {
	return 0, errors.New("sessions are not a windows concept")
}
