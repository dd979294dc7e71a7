package superblock

import (
	"sync"

	"github.com/google/uuid"
	"github.com/infinivision/blockfs/disk"
)

// Block 0 layout, big endian.
const (
	TotalOff = 0
	InodeOff = 4
	FreeOff  = 8
	UUIDOff  = 12
	SumOff   = UUIDOff + 16
	MetaSize = SumOff + 4
)

// SuperBlock owns the inode count and the free-block list. Free blocks are
// chained through their first four bytes; -1 ends the chain.
type SuperBlock interface {
	Inodes() int
	Blocks() int
	VolumeID() uuid.UUID
	Sync() error
	Format(int) error
	GetFreeBlock() (int16, error)
	ReturnBlock(int16) error
}

type superBlock struct {
	sync.Mutex
	d        disk.Disk
	total    int32 // # disk blocks
	inodes   int32 // # inodes
	freeList int32 // first free block, -1 if none
	id       uuid.UUID
}
