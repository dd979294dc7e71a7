package sum

import (
	"hash"
	"hash/crc32"
)

var castagnoli = crc32.MakeTable(crc32.Castagnoli)

func Sum(h hash.Hash32, data []byte) uint32 {
	h.Reset()
	h.Write(data)
	return h.Sum32()
}

// Block returns the checksum stored alongside on-disk metadata.
func Block(data []byte) uint32 {
	return Sum(crc32.New(castagnoli), data)
}
