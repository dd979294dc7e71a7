package disk

import (
	"math"
	"sync/atomic"

	"github.com/infinivision/blockfs/constant"
	"github.com/infinivision/blockfs/errmsg"
	"golang.org/x/sys/unix"
)

// New opens the disk image at path, creating it when missing. The image is
// grown to hold at least cnt blocks and is locked against other processes
// until Close.
func New(path string, cnt int) (*disk, error) {
	if cnt <= 0 || cnt > math.MaxInt16 {
		return nil, errmsg.BadDiskSize
	}
	fd, err := unix.Open(path, unix.O_CREAT|unix.O_RDWR, 0664)
	if err != nil {
		return nil, err
	}
	if err := unix.Flock(fd, unix.LOCK_EX|unix.LOCK_NB); err != nil {
		unix.Close(fd)
		return nil, err
	}
	var st unix.Stat_t
	if err := unix.Fstat(fd, &st); err != nil {
		unix.Close(fd)
		return nil, err
	}
	d := &disk{fd: fd, cnt: st.Size / constant.BlockSize}
	if d.cnt > math.MaxInt16 {
		unix.Close(fd)
		return nil, errmsg.BadDiskSize
	}
	if d.cnt < int64(cnt) {
		if err := unix.Ftruncate(fd, int64(cnt)*constant.BlockSize); err != nil {
			unix.Close(fd)
			return nil, err
		}
		d.cnt = int64(cnt)
	}
	return d, nil
}

func (d *disk) Close() error {
	unix.Flock(d.fd, unix.LOCK_UN)
	return unix.Close(d.fd)
}

func (d *disk) Flush() error {
	return unix.Fsync(d.fd)
}

func (d *disk) Blocks() int64 {
	return atomic.LoadInt64(&d.cnt)
}

func (d *disk) Read(bn int64, buf []byte) (Block, error) {
	switch {
	case bn < 0 || bn >= d.Blocks():
		return nil, errmsg.BadBlock
	case len(buf) != constant.BlockSize:
		return nil, errmsg.ReadFailed
	}
	n, err := unix.Pread(d.fd, buf, bn*constant.BlockSize)
	switch {
	case err != nil:
		return nil, err
	case n != constant.BlockSize:
		return nil, errmsg.ReadFailed
	}
	return NewBlock(bn, buf), nil
}

func (d *disk) Write(b Block) error {
	bn := b.BlockNumber()
	switch {
	case bn < 0 || bn >= d.Blocks():
		return errmsg.BadBlock
	case len(b.Buffer()) != constant.BlockSize:
		return errmsg.WriteFailed
	}
	n, err := unix.Pwrite(d.fd, b.Buffer(), bn*constant.BlockSize)
	switch {
	case err != nil:
		return err
	case n != constant.BlockSize:
		return errmsg.WriteFailed
	}
	return nil
}

// ReadBlock reads block bn into a freshly allocated buffer.
func ReadBlock(d Disk, bn int64) ([]byte, error) {
	b, err := d.Read(bn, make([]byte, constant.BlockSize))
	if err != nil {
		return nil, err
	}
	return b.Buffer(), nil
}

// WriteBlock writes buf as block bn.
func WriteBlock(d Disk, bn int64, buf []byte) error {
	return d.Write(NewBlock(bn, buf))
}
