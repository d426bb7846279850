//go:build !(linux || darwin || freebsd || netbsd || openbsd || dragonfly)

package alloc

import "errors"

const directSupported = false

func mapAnon(n int) ([]byte, error) {
	return nil, errors.New("direct storage not supported on this platform")
}

func unmap(b []byte) error {
	return nil
}
