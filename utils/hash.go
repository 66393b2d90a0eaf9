package utils

import "github.com/cespare/xxhash/v2"

func U64(s string) uint64 {
	return xxhash.Sum64String(s)
}

func Mix64(a, b uint64) uint64 {
	var buf [16]byte
	copy(buf[:8], U64ToBytes(a))
	copy(buf[8:], U64ToBytes(b))
	return xxhash.Sum64(buf[:])
}
