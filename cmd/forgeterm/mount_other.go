//go:build !linux && !darwin
// +build !linux,!darwin

package main

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/IceWhaleTech/forgeterm"
)

func mountSession(_ *forgeterm.Session, _ sync.Locker, _ string) (func(), error) {
	return nil, fmt.Errorf("FUSE mounts are not supported on %s", runtime.GOOS)
}
