package superblock

import (
	"encoding/binary"

	"github.com/google/uuid"
	"github.com/infinivision/blockfs/constant"
	"github.com/infinivision/blockfs/disk"
	"github.com/infinivision/blockfs/errmsg"
	"github.com/infinivision/blockfs/inode"
	"github.com/infinivision/blockfs/sum"
)

// New mounts the superblock of d. A disk whose block 0 fails its checksum is
// formatted with inodes inodes. A disk larger than the recorded size has the
// extra blocks added to the free list.
func New(d disk.Disk, inodes int) (*superBlock, error) {
	sb := &superBlock{d: d}
	buf, err := disk.ReadBlock(d, constant.SuperBlock)
	if err != nil {
		return nil, err
	}
	ok, err := sb.decode(buf)
	switch {
	case err != nil:
		return nil, err
	case !ok:
		if err := sb.Format(inodes); err != nil {
			return nil, err
		}
		return sb, nil
	}
	if int64(sb.total) < d.Blocks() {
		if err := sb.grow(int32(d.Blocks())); err != nil {
			return nil, err
		}
	}
	return sb, nil
}

func (sb *superBlock) Inodes() int {
	sb.Lock()
	defer sb.Unlock()
	return int(sb.inodes)
}

func (sb *superBlock) Blocks() int {
	sb.Lock()
	defer sb.Unlock()
	return int(sb.total)
}

func (sb *superBlock) VolumeID() uuid.UUID {
	sb.Lock()
	defer sb.Unlock()
	return sb.id
}

func (sb *superBlock) Sync() error {
	sb.Lock()
	defer sb.Unlock()
	if err := sb.write(); err != nil {
		return err
	}
	return sb.d.Flush()
}

// Format writes inodes empty inodes and threads every remaining block into
// the free list.
func (sb *superBlock) Format(inodes int) error {
	if inodes <= 0 || inodes > constant.MaxInodes {
		return errmsg.BadInode
	}
	total := sb.d.Blocks()
	first := firstData(int32(inodes))
	if int64(first) > total {
		return errmsg.BadDiskSize
	}
	id, err := uuid.NewRandom()
	if err != nil {
		return err
	}
	sb.Lock()
	defer sb.Unlock()
	ino := inode.New()
	ino.Flag = constant.Unused
	for bn := int64(1); bn < int64(first); bn++ {
		buf := make([]byte, constant.BlockSize)
		for i := 0; i < constant.InodesPerBlock; i++ {
			ino.Encode(buf[i*constant.InodeSize:])
		}
		if err := disk.WriteBlock(sb.d, bn, buf); err != nil {
			return err
		}
	}
	for bn := int64(first); bn < total; bn++ {
		next := int32(bn + 1)
		if next == int32(total) {
			next = -1
		}
		buf := make([]byte, constant.BlockSize)
		binary.BigEndian.PutUint32(buf, uint32(next))
		if err := disk.WriteBlock(sb.d, bn, buf); err != nil {
			return err
		}
	}
	sb.total, sb.inodes, sb.id = int32(total), int32(inodes), id
	if sb.freeList = first; int64(first) == total {
		sb.freeList = -1
	}
	return sb.write()
}

// GetFreeBlock pops the head of the free list. The returned block is zeroed.
func (sb *superBlock) GetFreeBlock() (int16, error) {
	sb.Lock()
	defer sb.Unlock()
	if sb.freeList < 0 {
		return constant.Unassigned, errmsg.OutOfSpace
	}
	bn := int64(sb.freeList)
	buf, err := disk.ReadBlock(sb.d, bn)
	if err != nil {
		return constant.Unassigned, err
	}
	next := int32(binary.BigEndian.Uint32(buf))
	if next != -1 && (next < firstData(sb.inodes) || next >= sb.total) {
		return constant.Unassigned, errmsg.BadBlock
	}
	if err := disk.WriteBlock(sb.d, bn, make([]byte, constant.BlockSize)); err != nil {
		return constant.Unassigned, err
	}
	sb.freeList = next
	return int16(bn), nil
}

func (sb *superBlock) ReturnBlock(bn int16) error {
	sb.Lock()
	defer sb.Unlock()
	if int32(bn) < firstData(sb.inodes) || int32(bn) >= sb.total {
		return errmsg.BadBlock
	}
	buf := make([]byte, constant.BlockSize)
	binary.BigEndian.PutUint32(buf, uint32(sb.freeList))
	if err := disk.WriteBlock(sb.d, int64(bn), buf); err != nil {
		return err
	}
	sb.freeList = int32(bn)
	return nil
}

func (sb *superBlock) write() error {
	buf, err := disk.ReadBlock(sb.d, constant.SuperBlock)
	if err != nil {
		return err
	}
	binary.BigEndian.PutUint32(buf[TotalOff:], uint32(sb.total))
	binary.BigEndian.PutUint32(buf[InodeOff:], uint32(sb.inodes))
	binary.BigEndian.PutUint32(buf[FreeOff:], uint32(sb.freeList))
	copy(buf[UUIDOff:SumOff], sb.id[:])
	binary.BigEndian.PutUint32(buf[SumOff:], sum.Block(buf[:SumOff]))
	return disk.WriteBlock(sb.d, constant.SuperBlock, buf)
}

// decode reports false when buf carries no file system. A checksummed block
// that does not fit d is an error.
func (sb *superBlock) decode(buf []byte) (bool, error) {
	if sum.Block(buf[:SumOff]) != binary.BigEndian.Uint32(buf[SumOff:]) {
		return false, nil
	}
	total := int32(binary.BigEndian.Uint32(buf[TotalOff:]))
	inodes := int32(binary.BigEndian.Uint32(buf[InodeOff:]))
	free := int32(binary.BigEndian.Uint32(buf[FreeOff:]))
	switch {
	case inodes <= 0 || inodes > constant.MaxInodes:
		return false, errmsg.BadInode
	case int64(total) > sb.d.Blocks() || firstData(inodes) > total:
		return false, errmsg.BadDiskSize
	case free != -1 && (free < firstData(inodes) || free >= total):
		return false, errmsg.BadBlock
	}
	id, err := uuid.FromBytes(buf[UUIDOff:SumOff])
	if err != nil {
		return false, err
	}
	sb.total, sb.inodes, sb.freeList, sb.id = total, inodes, free, id
	return true, nil
}

// grow chains blocks [sb.total, total) in front of the free list.
func (sb *superBlock) grow(total int32) error {
	sb.Lock()
	defer sb.Unlock()
	for bn := sb.total; bn < total; bn++ {
		next := bn + 1
		if next == total {
			next = sb.freeList
		}
		buf := make([]byte, constant.BlockSize)
		binary.BigEndian.PutUint32(buf, uint32(next))
		if err := disk.WriteBlock(sb.d, int64(bn), buf); err != nil {
			return err
		}
	}
	sb.freeList, sb.total = sb.total, total
	return sb.write()
}

// firstData returns the first block after the inode area.
func firstData(inodes int32) int32 {
	return int32(constant.SuperBlock) + 1 + (inodes+constant.InodesPerBlock-1)/constant.InodesPerBlock
}
