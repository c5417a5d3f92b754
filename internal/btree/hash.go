package btree

import (
	"encoding/binary"
	"hash/fnv"
	"math"
)

// KeyKind identifies which typed encoding HashKey should apply before
// hashing. It mirrors the data types a column can declare.
type KeyKind int

const (
	KeyInt KeyKind = iota
	KeyFloat
	KeyString
)

// HashKey reduces a typed key value to the 32-bit fingerprint the tree
// orders on, via FNV-1a over the value's raw little-endian bytes. The
// standard library's hash/fnv implements this algorithm and its documented
// constants (offset basis 2166136261, prime 16777619) exactly, so no
// third-party hashing library is used here.
func HashKey(kind KeyKind, value any) uint32 {
	h := fnv.New32a()
	switch kind {
	case KeyInt:
		var buf [4]byte
		binary.LittleEndian.PutUint32(buf[:], uint32(toInt32(value)))
		h.Write(buf[:])
	case KeyFloat:
		var buf [4]byte
		binary.LittleEndian.PutUint32(buf[:], math.Float32bits(toFloat32(value)))
		h.Write(buf[:])
	case KeyString:
		h.Write([]byte(toString(value)))
	default:
		return 0
	}
	return h.Sum32()
}

func toInt32(v any) int32 {
	switch n := v.(type) {
	case int32:
		return n
	case int:
		return int32(n)
	case uint32:
		return int32(n)
	default:
		return 0
	}
}

func toFloat32(v any) float32 {
	switch n := v.(type) {
	case float32:
		return n
	case float64:
		return float32(n)
	default:
		return 0
	}
}

func toString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}
