// Package entropy supplies seeds for runs that do not pin one.
package entropy

import (
	"crypto/rand"
	"encoding/binary"
	"log/slog"
	"time"
)

// Seed returns a non-zero seed drawn from crypto/rand. If the system source
// fails it falls back to the wall clock.
func Seed() int64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		slog.Warn("crypto/rand unavailable, seeding from clock", "error", err)
		return nonZero(time.Now().UnixNano())
	}
	// Keep 63 bits so the seed stays positive.
	return nonZero(int64(binary.LittleEndian.Uint64(buf[:]) >> 1))
}

func nonZero(seed int64) int64 {
	if seed == 0 {
		return 1
	}
	return seed
}
