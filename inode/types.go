package inode

import (
	"sync"

	"github.com/infinivision/blockfs/constant"
	"github.com/infinivision/blockfs/disk"
)

// Inode is the in-memory copy of one 32-byte on-disk inode. Direct slots
// fill from index 0 without gaps; Indirect is only used once all of them
// are assigned.
type Inode struct {
	Length   int32 // file size in bytes
	Count    int16 // # file-table entries pointing to this
	Flag     int16 // constant.Unused, constant.Used, ...
	Direct   [constant.DirectSize]int16
	Indirect int16
}

// Table loads and stores inodes. Inodes share disk blocks, so stores go
// through one table per device.
type Table interface {
	Load(int16) (*Inode, error)
	Store(int16, *Inode) error
}

type table struct {
	sync.Mutex
	d disk.Disk
}
