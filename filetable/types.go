package filetable

import (
	"sync"

	"github.com/infinivision/blockfs/directory"
	"github.com/infinivision/blockfs/inode"
	"github.com/infinivision/blockfs/locker"
	"github.com/nnsgmsone/damrey/logger"
)

type Mode int

const (
	Read   Mode = iota // "r"
	Write              // "w", truncates on open
	Append             // "a", starts at the end of the file
)

// Handle is one file-table entry. Pos, Count and the shared Inode are
// guarded by the handle's mutex; Inode is additionally guarded by the
// per-inode lock of the table's locker.
type Handle struct {
	sync.Mutex
	Inum  int16
	Mode  Mode
	Pos   int32 // seek pointer
	Count int   // # opens sharing this entry, 0 once released
	Inode *inode.Inode
}

type Table interface {
	Len() int
	Empty() bool
	Falloc(string, Mode) (*Handle, error)
	Ffree(*Handle) error
	Lookup(string) (int16, bool)
	Ifree(int16) error
	Names() []string
	DirBytes() []byte
	LoadDir([]byte) error
}

type table struct {
	sync.Mutex
	log logger.Log
	it  inode.Table
	lk  locker.Table
	dir directory.Directory
	hs  []*Handle
	mp  map[int16]*inode.Inode // inodes referenced by hs
}
