package filetable

import (
	"github.com/infinivision/blockfs/constant"
	"github.com/infinivision/blockfs/directory"
	"github.com/infinivision/blockfs/errmsg"
	"github.com/infinivision/blockfs/inode"
	"github.com/infinivision/blockfs/locker"
	"github.com/nnsgmsone/damrey/logger"
)

func New(dir directory.Directory, it inode.Table, lk locker.Table, log logger.Log) *table {
	return &table{
		it:  it,
		lk:  lk,
		log: log,
		dir: dir,
		mp:  make(map[int16]*inode.Inode),
	}
}

func ParseMode(s string) (Mode, error) {
	switch s {
	case "r":
		return Read, nil
	case "w":
		return Write, nil
	case "a":
		return Append, nil
	}
	return -1, errmsg.InvalidMode
}

func (m Mode) String() string {
	switch m {
	case Read:
		return "r"
	case Write:
		return "w"
	case Append:
		return "a"
	}
	return "?"
}

func (t *table) Len() int {
	t.Lock()
	defer t.Unlock()
	return len(t.hs)
}

func (t *table) Empty() bool {
	return t.Len() == 0
}

// Falloc returns the entry for name opened under mode. An entry already
// open under the same mode is shared and its count bumped. A missing name
// is created unless mode is Read.
func (t *table) Falloc(name string, mode Mode) (*Handle, error) {
	if mode < Read || mode > Append {
		return nil, errmsg.InvalidMode
	}
	t.Lock()
	defer t.Unlock()
	inum, ok := t.dir.Lookup(name)
	if ok {
		for _, h := range t.hs {
			if h.Inum == inum && h.Mode == mode {
				h.Lock()
				h.Count++
				h.Unlock()
				return h, nil
			}
		}
	}
	inum, ino, err := t.iget(name, inum, ok, mode)
	if err != nil {
		return nil, err
	}
	l := t.lk.Get(int64(inum))
	l.Lock()
	defer l.Unlock()
	ino.Count++
	if err := t.it.Store(inum, ino); err != nil {
		ino.Count--
		t.iput(inum, ino)
		if !ok {
			t.dir.Free(inum)
		}
		return nil, err
	}
	h := &Handle{Inum: inum, Mode: mode, Count: 1, Inode: ino}
	if mode == Append {
		h.Pos = ino.Length
	}
	t.hs = append(t.hs, h)
	return h, nil
}

// Ffree removes h from the table once its count has dropped to zero.
func (t *table) Ffree(h *Handle) error {
	t.Lock()
	defer t.Unlock()
	h.Lock()
	defer h.Unlock()
	if h.Count > 0 {
		return nil
	}
	i := t.index(h)
	if i < 0 {
		return errmsg.Closed
	}
	t.hs = append(t.hs[:i], t.hs[i+1:]...)
	l := t.lk.Get(int64(h.Inum))
	l.Lock()
	defer l.Unlock()
	h.Inode.Count--
	err := t.it.Store(h.Inum, h.Inode)
	if err != nil {
		t.log.Errorf("release inode %v failed: %v\n", h.Inum, err)
	}
	t.iput(h.Inum, h.Inode)
	return err
}

func (t *table) Lookup(name string) (int16, bool) {
	t.Lock()
	defer t.Unlock()
	return t.dir.Lookup(name)
}

// Ifree frees the directory slot of a closed file and marks its inode
// unused.
func (t *table) Ifree(inum int16) error {
	t.Lock()
	defer t.Unlock()
	if inum == constant.RootInode {
		return errmsg.ReservedEntry
	}
	if _, ok := t.mp[inum]; ok {
		return errmsg.Busy
	}
	if !t.dir.Free(inum) {
		return errmsg.NotExist
	}
	ino := inode.New()
	ino.Flag = constant.Unused
	return t.it.Store(inum, ino)
}

func (t *table) Names() []string {
	t.Lock()
	defer t.Unlock()
	var names []string
	for i := 0; i < t.dir.Size(); i++ {
		if name, ok := t.dir.Name(int16(i)); ok {
			names = append(names, name)
		}
	}
	return names
}

func (t *table) DirBytes() []byte {
	t.Lock()
	defer t.Unlock()
	return t.dir.Bytes()
}

func (t *table) LoadDir(buf []byte) error {
	t.Lock()
	defer t.Unlock()
	return t.dir.Load(buf)
}

// iget returns the shared in-memory inode for inum, loading or creating it.
func (t *table) iget(name string, inum int16, ok bool, mode Mode) (int16, *inode.Inode, error) {
	if !ok {
		if mode == Read {
			return -1, nil, errmsg.NotExist
		}
		inum, err := t.dir.Alloc(name)
		if err != nil {
			return -1, nil, err
		}
		ino := inode.New()
		t.mp[inum] = ino
		return inum, ino, nil
	}
	if ino, ok := t.mp[inum]; ok {
		return inum, ino, nil
	}
	ino, err := t.it.Load(inum)
	if err != nil {
		return -1, nil, err
	}
	// counts left on disk by an earlier mount do not refer to any entry here
	ino.Count = 0
	ino.Flag = constant.Used
	t.mp[inum] = ino
	return inum, ino, nil
}

func (t *table) iput(inum int16, ino *inode.Inode) {
	if ino.Count == 0 {
		delete(t.mp, inum)
	}
}

func (t *table) index(h *Handle) int {
	for i, x := range t.hs {
		if x == h {
			return i
		}
	}
	return -1
}
