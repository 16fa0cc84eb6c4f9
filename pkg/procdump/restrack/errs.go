//go:build linux

package restrack

import "errors"

// errRingBufferMapMissing means the embedded program loaded but didn't
// define the ring buffer map this package expects: a build mismatch
// between this package and the embedded object, not a runtime condition.
var errRingBufferMapMissing = errors.New("restrack: embedded program has no ring buffer map")
