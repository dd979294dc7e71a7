package errmsg

import "errors"

var (
	NotExist       = errors.New("not exist")
	ReadFailed     = errors.New("read failed")
	WriteFailed    = errors.New("write failed")
	OutOfSpace     = errors.New("out of space")
	NoFreeInode    = errors.New("no free inode")
	BadDiskSize    = errors.New("bad disk size")
	BadBlock       = errors.New("bad block number")
	BadInode       = errors.New("bad inode number")
	SlotOccupied   = errors.New("block slot occupied")
	NonContiguous  = errors.New("direct blocks not contiguous")
	NeedIndirect   = errors.New("indirect block needed")
	IndirectExists = errors.New("indirect block already registered")
	DirectNotFull  = errors.New("direct blocks not full")
	FileTooLarge   = errors.New("file too large")
	NameTooLong    = errors.New("name too long")
	BadName        = errors.New("bad file name")
	BadDirectory   = errors.New("bad directory data")
	Exist          = errors.New("file exists")
	ReservedEntry  = errors.New("reserved directory entry")
	Busy           = errors.New("file busy")
	InvalidSeek    = errors.New("invalid seek")
	InvalidWhence  = errors.New("invalid whence")
	InvalidMode    = errors.New("invalid mode")
	WriteOnly      = errors.New("write-only file")
	ReadOnly       = errors.New("read-only file")
	NilBuffer      = errors.New("nil buffer")
	Closed         = errors.New("file closed")
)
