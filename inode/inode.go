package inode

import (
	"encoding/binary"

	"github.com/infinivision/blockfs/constant"
	"github.com/infinivision/blockfs/disk"
	"github.com/infinivision/blockfs/errmsg"
)

func New() *Inode {
	ino := &Inode{Flag: constant.Used, Indirect: constant.Unassigned}
	for i := range ino.Direct {
		ino.Direct[i] = constant.Unassigned
	}
	return ino
}

func NewTable(d disk.Disk) *table {
	return &table{d: d}
}

func (t *table) Load(inum int16) (*Inode, error) {
	if inum < 0 {
		return nil, errmsg.BadInode
	}
	t.Lock()
	buf, err := disk.ReadBlock(t.d, Block(inum))
	t.Unlock()
	if err != nil {
		return nil, err
	}
	ino := new(Inode)
	ino.Decode(buf[offset(inum):])
	return ino, nil
}

func (t *table) Store(inum int16, ino *Inode) error {
	if inum < 0 {
		return errmsg.BadInode
	}
	t.Lock()
	defer t.Unlock()
	bn := Block(inum)
	buf, err := disk.ReadBlock(t.d, bn)
	if err != nil {
		return err
	}
	ino.Encode(buf[offset(inum):])
	return disk.WriteBlock(t.d, bn, buf)
}

// Block returns the disk block holding inode inum.
func Block(inum int16) int64 {
	return constant.SuperBlock + 1 + int64(inum)/constant.InodesPerBlock
}

func offset(inum int16) int {
	return int(inum) % constant.InodesPerBlock * constant.InodeSize
}

// Encode writes the 32-byte disk form of ino into buf.
func (ino *Inode) Encode(buf []byte) {
	binary.BigEndian.PutUint32(buf, uint32(ino.Length))
	binary.BigEndian.PutUint16(buf[4:], uint16(ino.Count))
	binary.BigEndian.PutUint16(buf[6:], uint16(ino.Flag))
	o := 8
	for _, bn := range ino.Direct {
		binary.BigEndian.PutUint16(buf[o:], uint16(bn))
		o += 2
	}
	binary.BigEndian.PutUint16(buf[o:], uint16(ino.Indirect))
}

func (ino *Inode) Decode(buf []byte) {
	ino.Length = int32(binary.BigEndian.Uint32(buf))
	ino.Count = int16(binary.BigEndian.Uint16(buf[4:]))
	ino.Flag = int16(binary.BigEndian.Uint16(buf[6:]))
	o := 8
	for i := range ino.Direct {
		ino.Direct[i] = int16(binary.BigEndian.Uint16(buf[o:]))
		o += 2
	}
	ino.Indirect = int16(binary.BigEndian.Uint16(buf[o:]))
}

func (ino *Inode) FindIndexBlock() int16 {
	return ino.Indirect
}

// FindTargetBlock returns the block holding byte off of the file, or
// constant.Unassigned.
func (ino *Inode) FindTargetBlock(d disk.Disk, off int32) (int16, error) {
	if off < 0 {
		return constant.Unassigned, nil
	}
	idx := int(off / constant.BlockSize)
	switch {
	case idx < constant.DirectSize:
		return ino.Direct[idx], nil
	case ino.Indirect == constant.Unassigned:
		return constant.Unassigned, nil
	case idx-constant.DirectSize >= constant.IndirectSize:
		return constant.Unassigned, nil
	}
	buf, err := disk.ReadBlock(d, int64(ino.Indirect))
	if err != nil {
		return constant.Unassigned, err
	}
	return entry(buf, idx-constant.DirectSize), nil
}

// RegisterTargetBlock makes bn the block holding byte off. It fails with
// errmsg.NeedIndirect when off lies past the direct slots and no indirect
// block is registered yet.
func (ino *Inode) RegisterTargetBlock(d disk.Disk, off int32, bn int16) error {
	if off < 0 {
		return errmsg.InvalidSeek
	}
	idx := int(off / constant.BlockSize)
	if idx < constant.DirectSize {
		switch {
		case ino.Direct[idx] != constant.Unassigned:
			return errmsg.SlotOccupied
		case idx > 0 && ino.Direct[idx-1] == constant.Unassigned:
			return errmsg.NonContiguous
		}
		ino.Direct[idx] = bn
		return nil
	}
	idx -= constant.DirectSize
	switch {
	case idx >= constant.IndirectSize:
		return errmsg.FileTooLarge
	case ino.Indirect == constant.Unassigned:
		return errmsg.NeedIndirect
	}
	buf, err := disk.ReadBlock(d, int64(ino.Indirect))
	if err != nil {
		return err
	}
	if entry(buf, idx) != constant.Unassigned {
		return errmsg.SlotOccupied
	}
	binary.BigEndian.PutUint16(buf[idx*2:], uint16(bn))
	return disk.WriteBlock(d, int64(ino.Indirect), buf)
}

// RegisterIndexBlock formats bn as an empty indirect block and attaches it.
func (ino *Inode) RegisterIndexBlock(d disk.Disk, bn int16) error {
	for _, x := range ino.Direct {
		if x == constant.Unassigned {
			return errmsg.DirectNotFull
		}
	}
	if ino.Indirect != constant.Unassigned {
		return errmsg.IndirectExists
	}
	x := constant.Unassigned
	buf := make([]byte, constant.BlockSize)
	for i := 0; i < constant.IndirectSize; i++ {
		binary.BigEndian.PutUint16(buf[i*2:], uint16(x))
	}
	if err := disk.WriteBlock(d, int64(bn), buf); err != nil {
		return err
	}
	ino.Indirect = bn
	return nil
}

// UnregisterIndexBlock detaches the indirect block and returns its entries,
// assigned or not. It returns nil when there is no indirect block.
func (ino *Inode) UnregisterIndexBlock(d disk.Disk) ([]int16, error) {
	if ino.Indirect == constant.Unassigned {
		return nil, nil
	}
	buf, err := disk.ReadBlock(d, int64(ino.Indirect))
	if err != nil {
		return nil, err
	}
	ino.Indirect = constant.Unassigned
	xs := make([]int16, constant.IndirectSize)
	for i := range xs {
		xs[i] = entry(buf, i)
	}
	return xs, nil
}

func entry(buf []byte, i int) int16 {
	return int16(binary.BigEndian.Uint16(buf[i*2:]))
}
