//go:build !(linux || freebsd || openbsd || netbsd || dragonfly)

package clipboard

import "errors"

var errUnsupported = errors.New("clipboard is not supported on this platform")

func ensureInit() error { return errUnsupported }

func write(Payload) error { return errUnsupported }

func readPNG() ([]byte, error) { return nil, errUnsupported }

func readText() ([]byte, error) { return nil, errUnsupported }
