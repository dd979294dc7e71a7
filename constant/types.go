package constant

const (
	BlockSize      = 512
	SuperBlock     = int64(0) // block number of the superblock
	InodeSize      = 32
	InodesPerBlock = BlockSize / InodeSize // 16
)

const (
	DirectSize   = 11
	IndirectSize = BlockSize / 2 // two-byte entries
	MaxFileSize  = (DirectSize + IndirectSize) * BlockSize
)

// Unassigned marks an empty block pointer on disk and in memory.
const Unassigned = int16(-1)

const (
	MaxChars  = 30           // max characters of a file name
	NameBytes = MaxChars * 2 // bytes reserved per name on disk
	Root      = "/"
	RootInode = int16(0)
	EntrySize = 4 + NameBytes           // directory entry: size then name
	MaxInodes = MaxFileSize / EntrySize // the directory fits in the root file
)

const (
	Unused = iota // must be zero
	Used
	Deleted
)

const (
	DefaultBlocks = 1000
	DefaultInodes = 64
	DefaultDisk   = "DISK"
)
