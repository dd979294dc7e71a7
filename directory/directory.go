package directory

import (
	"encoding/binary"
	"unicode/utf8"

	"github.com/infinivision/blockfs/constant"
	"github.com/infinivision/blockfs/errmsg"
)

// New returns a directory with n slots; slot 0 holds the root name.
func New(n int, policy int) *directory {
	d := &directory{
		policy: policy,
		fsize:  make([]int32, n),
		fnames: make([][]rune, n),
	}
	for i := range d.fnames {
		d.fnames[i] = make([]rune, constant.MaxChars)
	}
	if n > 0 {
		d.set(0, []rune(constant.Root))
	}
	return d
}

func (d *directory) Size() int {
	return len(d.fsize)
}

// Alloc stores name in the first free slot and returns the slot as the new
// inode number.
func (d *directory) Alloc(name string) (int16, error) {
	rs, err := d.normalize(name)
	if err != nil {
		return -1, err
	}
	if _, ok := d.find(rs); ok {
		return -1, errmsg.Exist
	}
	for i := range d.fsize {
		if d.fsize[i] == 0 {
			d.set(i, rs)
			return int16(i), nil
		}
	}
	return -1, errmsg.NoFreeInode
}

func (d *directory) Free(inum int16) bool {
	if inum <= constant.RootInode || int(inum) >= len(d.fsize) || d.fsize[inum] == 0 {
		return false
	}
	d.fsize[inum] = 0
	return true
}

// Lookup cuts name the same way Alloc does, so an over-long name resolves
// to the entry it created.
func (d *directory) Lookup(name string) (int16, bool) {
	rs, err := d.normalize(name)
	if err != nil {
		return -1, false
	}
	return d.find(rs)
}

func (d *directory) Name(inum int16) (string, bool) {
	if inum < 0 || int(inum) >= len(d.fsize) || d.fsize[inum] == 0 {
		return "", false
	}
	return string(d.fnames[inum][:d.fsize[inum]]), true
}

// Bytes returns every slot's length followed by every slot's name, each
// name padded to constant.NameBytes.
func (d *directory) Bytes() []byte {
	n := len(d.fsize)
	buf := make([]byte, n*constant.EntrySize)
	o := 0
	for _, size := range d.fsize {
		binary.BigEndian.PutUint32(buf[o:], uint32(size))
		o += 4
	}
	for i, size := range d.fsize {
		copy(buf[o:o+constant.NameBytes], string(d.fnames[i][:size]))
		o += constant.NameBytes
	}
	return buf
}

func (d *directory) Load(buf []byte) error {
	n := len(d.fsize)
	if len(buf) < n*constant.EntrySize {
		return errmsg.BadDirectory
	}
	fsize := make([]int32, n)
	fnames := make([][]rune, n)
	o := 0
	for i := range fsize {
		fsize[i] = int32(binary.BigEndian.Uint32(buf[o:]))
		if fsize[i] < 0 || fsize[i] > constant.MaxChars {
			return errmsg.BadDirectory
		}
		o += 4
	}
	for i := range fnames {
		fnames[i] = make([]rune, constant.MaxChars)
		name := buf[o : o+constant.NameBytes]
		for j := int32(0); j < fsize[i]; j++ {
			r, k := utf8.DecodeRune(name)
			if k == 0 {
				return errmsg.BadDirectory
			}
			fnames[i][j] = r
			name = name[k:]
		}
		o += constant.NameBytes
	}
	d.fsize, d.fnames = fsize, fnames
	return nil
}

func (d *directory) set(i int, rs []rune) {
	d.fsize[i] = int32(copy(d.fnames[i], rs))
}

func (d *directory) find(rs []rune) (int16, bool) {
	for i, size := range d.fsize {
		if int(size) == len(rs) && equal(d.fnames[i][:size], rs) {
			return int16(i), true
		}
	}
	return -1, false
}

// normalize bounds name to constant.MaxChars runes whose UTF-8 form fits in
// constant.NameBytes.
func (d *directory) normalize(name string) ([]rune, error) {
	if len(name) == 0 {
		return nil, errmsg.BadName
	}
	rs := []rune(name)
	if len(rs) > constant.MaxChars {
		rs = rs[:constant.MaxChars]
	}
	for len(string(rs)) > constant.NameBytes {
		rs = rs[:len(rs)-1]
	}
	if len(rs) != utf8.RuneCountInString(name) && d.policy == Strict {
		return nil, errmsg.NameTooLong
	}
	return rs, nil
}

func equal(a, b []rune) bool {
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
