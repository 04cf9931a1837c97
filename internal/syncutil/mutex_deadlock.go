//go:build deadlock

// Package syncutil provides the mutex types backing the guarded locks and
// the package's internal bookkeeping. This file is compiled when building
// with -tags=deadlock; the go-deadlock detector then watches the same
// acquisitions the declared order is supposed to have made safe.
package syncutil

import deadlock "github.com/sasha-s/go-deadlock"

// Mutex wraps deadlock.Mutex for deadlock detection.
type Mutex struct {
	deadlock.Mutex
}

// RWMutex wraps deadlock.RWMutex for deadlock detection.
type RWMutex struct {
	deadlock.RWMutex
}
