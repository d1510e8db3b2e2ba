// Package persist stores character and guild config documents: in memory
// for the simulator and tests, in PostgreSQL for a long-running world.
package persist

import "errors"

// ErrNotFound is returned when a character or guild config does not exist.
var ErrNotFound = errors.New("record not found")
