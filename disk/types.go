package disk

// Block is one constant.BlockSize sector together with its position on the
// image.
type Block interface {
	Buffer() []byte
	BlockNumber() int64
}

// Disk is an image file cut into Blocks() sectors of constant.BlockSize
// bytes, numbered from 0. Reads and writes move whole sectors and fail with
// errmsg.BadBlock outside [0, Blocks()). The image is held under an
// exclusive flock until Close.
type Disk interface {
	Blocks() int64
	Read(bn int64, buf []byte) (Block, error)
	Write(Block) error
	Flush() error
	Close() error
}

type disk struct {
	fd  int
	cnt int64 // sectors on the image
}

type block struct {
	bn  int64
	buf []byte
}

// NewBlock wraps buf, which must be constant.BlockSize long, as sector bn.
func NewBlock(bn int64, buf []byte) Block {
	return &block{bn: bn, buf: buf}
}

func (b *block) Buffer() []byte     { return b.buf }
func (b *block) BlockNumber() int64 { return b.bn }
