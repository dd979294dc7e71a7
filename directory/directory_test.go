package directory

import (
	"fmt"
	"strings"
	"testing"

	"github.com/infinivision/blockfs/constant"
	"github.com/infinivision/blockfs/errmsg"
	"github.com/stretchr/testify/require"
)

func TestAllocLookupFree(t *testing.T) {
	r := require.New(t)
	d := New(4, Truncate)

	inum, ok := d.Lookup(constant.Root)
	r.True(ok)
	r.Equal(constant.RootInode, inum)

	_, ok = d.Lookup("a.txt")
	r.False(ok)
	inum, err := d.Alloc("a.txt")
	r.NoError(err)
	r.Equal(int16(1), inum)
	_, err = d.Alloc("a.txt")
	r.Equal(errmsg.Exist, err)
	inum, err = d.Alloc("b.txt")
	r.NoError(err)
	r.Equal(int16(2), inum)
	inum, err = d.Alloc("c.txt")
	r.NoError(err)
	r.Equal(int16(3), inum)
	_, err = d.Alloc("d.txt")
	r.Equal(errmsg.NoFreeInode, err)

	inum, ok = d.Lookup("b.txt")
	r.True(ok)
	r.Equal(int16(2), inum)
	r.True(d.Free(2))
	r.False(d.Free(2))
	_, ok = d.Lookup("b.txt")
	r.False(ok)

	// the freed slot is the first free one
	inum, err = d.Alloc("d.txt")
	r.NoError(err)
	r.Equal(int16(2), inum)

	r.False(d.Free(constant.RootInode))
	r.False(d.Free(-1))
	r.False(d.Free(4))

	_, err = d.Alloc("")
	r.Equal(errmsg.BadName, err)
}

func TestLookupPrefix(t *testing.T) {
	d := New(8, Truncate)
	_, err := d.Alloc("abc")
	require.NoError(t, err)
	_, ok := d.Lookup("ab")
	require.False(t, ok)
	_, ok = d.Lookup("abcd")
	require.False(t, ok)
}

func TestNamePolicy(t *testing.T) {
	long := strings.Repeat("x", constant.MaxChars+10)

	t.Run("truncate", func(t *testing.T) {
		r := require.New(t)
		d := New(8, Truncate)
		inum, err := d.Alloc(long)
		r.NoError(err)
		name, ok := d.Name(inum)
		r.True(ok)
		r.Equal(long[:constant.MaxChars], name)
		x, ok := d.Lookup(long)
		r.True(ok)
		r.Equal(inum, x)
		x, ok = d.Lookup(long[:constant.MaxChars])
		r.True(ok)
		r.Equal(inum, x)
	})

	t.Run("strict", func(t *testing.T) {
		r := require.New(t)
		d := New(8, Strict)
		_, err := d.Alloc(long)
		r.Equal(errmsg.NameTooLong, err)
		_, ok := d.Lookup(long)
		r.False(ok)
		_, err = d.Alloc(long[:constant.MaxChars])
		r.NoError(err)
	})

	t.Run("multibyte", func(t *testing.T) {
		r := require.New(t)
		d := New(8, Truncate)
		inum, err := d.Alloc(strings.Repeat("ü", constant.MaxChars))
		r.NoError(err)
		name, _ := d.Name(inum)
		r.Equal(strings.Repeat("ü", constant.MaxChars), name)

		inum, err = d.Alloc(strings.Repeat("€", constant.MaxChars))
		r.NoError(err)
		name, _ = d.Name(inum)
		r.Equal(strings.Repeat("€", constant.NameBytes/3), name)

		_, err = New(8, Strict).Alloc(strings.Repeat("€", constant.MaxChars))
		r.Equal(errmsg.NameTooLong, err)
	})
}

func TestBytes(t *testing.T) {
	r := require.New(t)
	d := New(16, Truncate)
	names := map[int16]string{}
	for i := 0; i < 10; i++ {
		name := fmt.Sprintf("file_%v_%s", i, strings.Repeat("é", i))
		inum, err := d.Alloc(name)
		r.NoError(err)
		names[inum] = name
	}
	r.True(d.Free(3))
	delete(names, 3)

	buf := d.Bytes()
	r.Len(buf, 16*4+16*constant.NameBytes)
	r.Equal([]byte{0, 0, 0, 1, '/'}, append(buf[:4:4], buf[16*4]))

	e := New(16, Truncate)
	r.NoError(e.Load(buf))
	for inum, name := range names {
		x, ok := e.Lookup(name)
		r.True(ok, name)
		r.Equal(inum, x)
	}
	_, ok := e.Name(3)
	r.False(ok)
	r.Equal(buf, e.Bytes())

	r.Equal(errmsg.BadDirectory, e.Load(buf[:len(buf)-1]))
	bad := append([]byte{}, buf...)
	bad[3] = constant.MaxChars + 1
	r.Equal(errmsg.BadDirectory, e.Load(bad))
	r.Equal(buf, e.Bytes())
}
