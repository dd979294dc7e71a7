package fs

import (
	"github.com/infinivision/blockfs/constant"
	"github.com/infinivision/blockfs/disk"
	"github.com/infinivision/blockfs/errmsg"
	"github.com/infinivision/blockfs/filetable"
)

func (fs *fileSystem) Fsize(h *filetable.Handle) (int32, error) {
	h.Lock()
	defer h.Unlock()
	if h.Count <= 0 {
		return -1, errmsg.Closed
	}
	l := fs.lk.Get(int64(h.Inum))
	l.RLock()
	defer l.RUnlock()
	return h.Inode.Length, nil
}

// Seek moves the seek pointer of h. The new position must lie in
// [0, size]; on failure the pointer is left alone and -1 is returned.
func (fs *fileSystem) Seek(h *filetable.Handle, offset int32, whence Whence) (int32, error) {
	h.Lock()
	defer h.Unlock()
	if h.Count <= 0 {
		return -1, errmsg.Closed
	}
	l := fs.lk.Get(int64(h.Inum))
	l.RLock()
	defer l.RUnlock()
	size := int64(h.Inode.Length)
	var pos int64
	switch whence {
	case SeekSet:
		pos = int64(offset)
	case SeekCur:
		pos = int64(h.Pos) + int64(offset)
	case SeekEnd:
		pos = size + int64(offset)
	default:
		return -1, errmsg.InvalidWhence
	}
	if pos < 0 || pos > size {
		return -1, errmsg.InvalidSeek
	}
	h.Pos = int32(pos)
	return h.Pos, nil
}

// Read copies file data from the seek pointer of h into buf until buf is
// full or the end of the file is reached.
func (fs *fileSystem) Read(h *filetable.Handle, buf []byte) (int, error) {
	if h.Mode != filetable.Read {
		return 0, errmsg.WriteOnly
	}
	h.Lock()
	defer h.Unlock()
	if h.Count <= 0 {
		return 0, errmsg.Closed
	}
	l := fs.lk.Get(int64(h.Inum))
	l.RLock()
	defer l.RUnlock()
	ino := h.Inode
	n := 0
	for n < len(buf) && h.Pos < ino.Length {
		bn, err := ino.FindTargetBlock(fs.d, h.Pos)
		if err != nil {
			return n, err
		}
		if bn == constant.Unassigned {
			break
		}
		data, err := disk.ReadBlock(fs.d, int64(bn))
		if err != nil {
			return n, err
		}
		off := int(h.Pos % constant.BlockSize)
		m := min(constant.BlockSize-off, len(buf)-n, int(ino.Length-h.Pos))
		copy(buf[n:n+m], data[off:off+m])
		h.Pos += int32(m)
		n += m
	}
	return n, nil
}

// Write copies buf into the file at the seek pointer of h, allocating
// blocks as needed. On failure the bytes already written stay in place and
// the returned count says how many there are.
func (fs *fileSystem) Write(h *filetable.Handle, buf []byte) (int, error) {
	if buf == nil {
		return 0, errmsg.NilBuffer
	}
	if h.Mode == filetable.Read {
		return 0, errmsg.ReadOnly
	}
	h.Lock()
	defer h.Unlock()
	if h.Count <= 0 {
		return 0, errmsg.Closed
	}
	l := fs.lk.Get(int64(h.Inum))
	l.Lock()
	defer l.Unlock()
	var err error
	ino := h.Inode
	n := 0
	for n < len(buf) {
		var bn int16
		if bn, err = fs.targetBlock(h); err != nil {
			break
		}
		var data []byte
		if data, err = disk.ReadBlock(fs.d, int64(bn)); err != nil {
			break
		}
		off := int(h.Pos % constant.BlockSize)
		m := min(constant.BlockSize-off, len(buf)-n)
		copy(data[off:off+m], buf[n:n+m])
		if err = disk.WriteBlock(fs.d, int64(bn), data); err != nil {
			break
		}
		h.Pos += int32(m)
		n += m
		if h.Pos > ino.Length {
			ino.Length = h.Pos
		}
	}
	if serr := fs.it.Store(h.Inum, ino); serr != nil && err == nil {
		err = serr
	}
	if err != nil {
		fs.log.Errorf("write inode %v stopped after %v of %v bytes: %v\n", h.Inum, n, len(buf), err)
	}
	return n, err
}

// targetBlock returns the block under the seek pointer of h, allocating
// and registering one (and an indirect block if needed) when there is
// none.
func (fs *fileSystem) targetBlock(h *filetable.Handle) (int16, error) {
	ino := h.Inode
	if h.Pos >= constant.MaxFileSize {
		return constant.Unassigned, errmsg.FileTooLarge
	}
	bn, err := ino.FindTargetBlock(fs.d, h.Pos)
	if err != nil || bn != constant.Unassigned {
		return bn, err
	}
	if bn, err = fs.sb.GetFreeBlock(); err != nil {
		return constant.Unassigned, err
	}
	err = ino.RegisterTargetBlock(fs.d, h.Pos, bn)
	if err == errmsg.NeedIndirect {
		var ib int16
		if ib, err = fs.sb.GetFreeBlock(); err == nil {
			if err = ino.RegisterIndexBlock(fs.d, ib); err != nil {
				fs.returnBlock(ib)
			} else {
				err = ino.RegisterTargetBlock(fs.d, h.Pos, bn)
			}
		}
	}
	if err != nil {
		fs.returnBlock(bn)
		return constant.Unassigned, err
	}
	return bn, nil
}

// deallocateBlocks returns every block of the file behind h to the free
// list and empties it. It refuses while anyone else has the file open.
func (fs *fileSystem) deallocateBlocks(h *filetable.Handle) error {
	h.Lock()
	defer h.Unlock()
	l := fs.lk.Get(int64(h.Inum))
	l.Lock()
	defer l.Unlock()
	ino := h.Inode
	if h.Count != 1 || ino.Count != 1 {
		return errmsg.Busy
	}
	var err error
	ib := ino.FindIndexBlock()
	xs, uerr := ino.UnregisterIndexBlock(fs.d)
	if uerr != nil {
		return uerr
	}
	for _, bn := range xs {
		if bn != constant.Unassigned {
			if rerr := fs.returnBlock(bn); err == nil {
				err = rerr
			}
		}
	}
	if ib != constant.Unassigned {
		if rerr := fs.returnBlock(ib); err == nil {
			err = rerr
		}
	}
	for i, bn := range ino.Direct {
		if bn != constant.Unassigned {
			if rerr := fs.returnBlock(bn); err == nil {
				err = rerr
			}
			ino.Direct[i] = constant.Unassigned
		}
	}
	ino.Length = 0
	h.Pos = 0
	if serr := fs.it.Store(h.Inum, ino); err == nil {
		err = serr
	}
	return err
}

func (fs *fileSystem) returnBlock(bn int16) error {
	err := fs.sb.ReturnBlock(bn)
	if err != nil {
		fs.log.Errorf("return block %v failed: %v\n", bn, err)
	}
	return err
}

func min(xs ...int) int {
	m := xs[0]
	for _, x := range xs[1:] {
		if x < m {
			m = x
		}
	}
	return m
}
