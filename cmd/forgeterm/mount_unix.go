//go:build linux || darwin
// +build linux darwin

package main

import (
	"os"
	"sync"

	"github.com/IceWhaleTech/forgeterm"
)

func mountSession(s *forgeterm.Session, lock sync.Locker, mountPoint string) (func(), error) {
	if err := os.MkdirAll(mountPoint, 0o755); err != nil {
		return nil, err
	}
	server, err := forgeterm.MountSession(s, lock, mountPoint, nil)
	if err != nil {
		return nil, err
	}
	return func() { _ = server.Unmount() }, nil
}
