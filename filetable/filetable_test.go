package filetable

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/infinivision/blockfs/constant"
	"github.com/infinivision/blockfs/directory"
	"github.com/infinivision/blockfs/disk"
	"github.com/infinivision/blockfs/errmsg"
	"github.com/infinivision/blockfs/inode"
	"github.com/infinivision/blockfs/locker"
	"github.com/nnsgmsone/damrey/logger"
	"github.com/stretchr/testify/require"
)

func newTable(t *testing.T) (*table, inode.Table, func()) {
	dir, err := ioutil.TempDir("", "TestFileTable-*")
	require.NoError(t, err)
	d, err := disk.New(filepath.Join(dir, "DISK"), 20)
	require.NoError(t, err)
	it := inode.NewTable(d)
	ft := New(directory.New(8, directory.Truncate), it, locker.New(), logger.New(ioutil.Discard, "test"))
	return ft, it, func() {
		d.Close()
		os.RemoveAll(dir)
	}
}

func TestParseMode(t *testing.T) {
	for _, m := range []Mode{Read, Write, Append} {
		x, err := ParseMode(m.String())
		require.NoError(t, err)
		require.Equal(t, m, x)
	}
	_, err := ParseMode("w+")
	require.Equal(t, errmsg.InvalidMode, err)
}

func TestFalloc(t *testing.T) {
	r := require.New(t)
	ft, it, cleanup := newTable(t)
	defer cleanup()

	_, err := ft.Falloc("a", Read)
	r.Equal(errmsg.NotExist, err)
	_, err = ft.Falloc("a", Mode(7))
	r.Equal(errmsg.InvalidMode, err)
	r.True(ft.Empty())

	w, err := ft.Falloc("a", Write)
	r.NoError(err)
	r.Equal(int16(1), w.Inum)
	r.Equal(1, w.Count)
	r.Equal(int16(1), w.Inode.Count)

	ino, err := it.Load(1)
	r.NoError(err)
	r.Equal(int16(constant.Used), ino.Flag)
	r.Equal(int16(1), ino.Count)

	// same inode and mode share one entry
	w2, err := ft.Falloc("a", Write)
	r.NoError(err)
	r.True(w == w2)
	r.Equal(2, w.Count)
	r.Equal(1, ft.Len())

	// another mode gets its own entry over the same inode
	rd, err := ft.Falloc("a", Read)
	r.NoError(err)
	r.False(rd == w)
	r.True(rd.Inode == w.Inode)
	r.Equal(int16(2), w.Inode.Count)
	r.Equal(2, ft.Len())

	// entries still referenced stay
	w.Count--
	r.NoError(ft.Ffree(w))
	r.Equal(2, ft.Len())
	w.Count--
	r.NoError(ft.Ffree(w))
	r.Equal(1, ft.Len())
	r.Equal(int16(1), rd.Inode.Count)
	r.Equal(errmsg.Closed, ft.Ffree(w))

	rd.Count--
	r.NoError(ft.Ffree(rd))
	r.True(ft.Empty())
	ino, err = it.Load(1)
	r.NoError(err)
	r.Equal(int16(0), ino.Count)
}

func TestAppendStartsAtEnd(t *testing.T) {
	r := require.New(t)
	ft, it, cleanup := newTable(t)
	defer cleanup()

	h, err := ft.Falloc("log", Write)
	r.NoError(err)
	h.Inode.Length = 1234
	r.NoError(it.Store(h.Inum, h.Inode))
	h.Count--
	r.NoError(ft.Ffree(h))

	a, err := ft.Falloc("log", Append)
	r.NoError(err)
	r.Equal(int32(1234), a.Pos)
}

func TestIfree(t *testing.T) {
	r := require.New(t)
	ft, _, cleanup := newTable(t)
	defer cleanup()

	h, err := ft.Falloc("a", Write)
	r.NoError(err)
	r.Equal(errmsg.Busy, ft.Ifree(h.Inum))
	h.Count--
	r.NoError(ft.Ffree(h))

	r.NoError(ft.Ifree(h.Inum))
	_, ok := ft.Lookup("a")
	r.False(ok)
	r.Equal(errmsg.NotExist, ft.Ifree(h.Inum))
	r.Equal(errmsg.ReservedEntry, ft.Ifree(constant.RootInode))
	r.Equal([]string{constant.Root}, ft.Names())
}

func TestDirBytes(t *testing.T) {
	r := require.New(t)
	ft, _, cleanup := newTable(t)
	defer cleanup()

	for _, name := range []string{"a", "b", "c"} {
		h, err := ft.Falloc(name, Write)
		r.NoError(err)
		h.Count--
		r.NoError(ft.Ffree(h))
	}
	buf := ft.DirBytes()

	ft2, _, cleanup2 := newTable(t)
	defer cleanup2()
	r.NoError(ft2.LoadDir(buf))
	r.Equal([]string{constant.Root, "a", "b", "c"}, ft2.Names())
}
