package fs

import (
	"io"
	"sync"

	"github.com/google/uuid"
	"github.com/infinivision/blockfs/disk"
	"github.com/infinivision/blockfs/filetable"
	"github.com/infinivision/blockfs/inode"
	"github.com/infinivision/blockfs/locker"
	"github.com/infinivision/blockfs/superblock"
	"github.com/nnsgmsone/damrey/logger"
)

type Whence int

const (
	SeekSet Whence = iota
	SeekCur
	SeekEnd
)

/*
FileSystem provides the file operations of blockfs. FileSystem is thread-safe:
operations on one Handle are serialized, operations on different handles run
in parallel.
*/
type FileSystem interface {
	Shutdown() error
	VolumeID() uuid.UUID

	Open(string, filetable.Mode) (*filetable.Handle, error)
	Close(*filetable.Handle) (bool, error)
	Fsize(*filetable.Handle) (int32, error)
	Seek(*filetable.Handle, int32, Whence) (int32, error)
	Read(*filetable.Handle, []byte) (int, error)
	Write(*filetable.Handle, []byte) (int, error)
	Delete(string) error
	List() []string

	Sync() error
	Format(int) error
}

type Config struct {
	DiskName    string
	Blocks      int // disk size in blocks
	Inodes      int // inode count used when the disk has to be formatted
	StrictNames bool
	LogWriter   io.Writer
}

type fileSystem struct {
	sync.RWMutex // held exclusively by Format
	cfg          Config
	d            disk.Disk
	it           inode.Table
	lk           locker.Table
	log          logger.Log
	ft           filetable.Table
	sb           superblock.SuperBlock
}
