package fs

import (
	"os"

	"github.com/google/uuid"
	"github.com/infinivision/blockfs/constant"
	"github.com/infinivision/blockfs/directory"
	"github.com/infinivision/blockfs/disk"
	"github.com/infinivision/blockfs/errmsg"
	"github.com/infinivision/blockfs/filetable"
	"github.com/infinivision/blockfs/inode"
	"github.com/infinivision/blockfs/locker"
	"github.com/infinivision/blockfs/superblock"
	"github.com/nnsgmsone/damrey/logger"
)

func DefaultConfig() Config {
	return Config{
		DiskName:  constant.DefaultDisk,
		Blocks:    constant.DefaultBlocks,
		Inodes:    constant.DefaultInodes,
		LogWriter: os.Stderr,
	}
}

// Open mounts the disk image named by cfg, formatting it when it holds no
// file system, and loads the root directory.
func Open(cfg Config) (*fileSystem, error) {
	log := logger.New(cfg.LogWriter, "blockfs")
	d, err := disk.New(cfg.DiskName, cfg.Blocks)
	if err != nil {
		return nil, err
	}
	sb, err := superblock.New(d, cfg.Inodes)
	if err != nil {
		d.Close()
		return nil, err
	}
	fs := &fileSystem{
		cfg: cfg,
		d:   d,
		sb:  sb,
		log: log,
		lk:  locker.New(),
		it:  inode.NewTable(d),
	}
	fs.ft = fs.newFileTable()
	if err := fs.loadDir(); err != nil {
		d.Close()
		return nil, err
	}
	return fs, nil
}

func (fs *fileSystem) Shutdown() error {
	if err := fs.Sync(); err != nil {
		fs.d.Close()
		return err
	}
	return fs.d.Close()
}

func (fs *fileSystem) VolumeID() uuid.UUID {
	return fs.sb.VolumeID()
}

// Open returns a handle on name. The root directory file is not open to
// callers.
func (fs *fileSystem) Open(name string, mode filetable.Mode) (*filetable.Handle, error) {
	fs.RLock()
	defer fs.RUnlock()
	if inum, ok := fs.ft.Lookup(name); ok && inum == constant.RootInode {
		return nil, errmsg.ReservedEntry
	}
	return fs.open(name, mode)
}

// Close drops one reference to h. It reports true once the last reference is
// gone and the entry has been released.
func (fs *fileSystem) Close(h *filetable.Handle) (bool, error) {
	fs.RLock()
	defer fs.RUnlock()
	return fs.close(h)
}

func (fs *fileSystem) Delete(name string) error {
	fs.RLock()
	defer fs.RUnlock()
	inum, ok := fs.ft.Lookup(name)
	switch {
	case !ok:
		return errmsg.NotExist
	case inum == constant.RootInode:
		return errmsg.ReservedEntry
	}
	h, err := fs.open(name, filetable.Write)
	if err != nil {
		return err
	}
	if _, err := fs.close(h); err != nil {
		return err
	}
	return fs.ft.Ifree(h.Inum)
}

func (fs *fileSystem) List() []string {
	fs.RLock()
	defer fs.RUnlock()
	return fs.ft.Names()
}

// Sync writes the directory to the root file and persists the superblock.
func (fs *fileSystem) Sync() error {
	fs.RLock()
	defer fs.RUnlock()
	h, err := fs.open(constant.Root, filetable.Write)
	if err != nil {
		fs.log.Errorf("sync: open root directory failed: %v\n", err)
		return err
	}
	if _, err := fs.Write(h, fs.ft.DirBytes()); err != nil {
		fs.log.Errorf("sync: write root directory failed: %v\n", err)
		fs.close(h)
		return err
	}
	if _, err := fs.close(h); err != nil {
		return err
	}
	return fs.sb.Sync()
}

// Format discards every file and rebuilds an empty file system with inodes
// inodes.
func (fs *fileSystem) Format(inodes int) error {
	fs.Lock()
	defer fs.Unlock()
	if !fs.ft.Empty() {
		return errmsg.Busy
	}
	if err := fs.sb.Format(inodes); err != nil {
		return err
	}
	fs.ft = fs.newFileTable()
	return nil
}

func (fs *fileSystem) open(name string, mode filetable.Mode) (*filetable.Handle, error) {
	h, err := fs.ft.Falloc(name, mode)
	if err != nil {
		return nil, err
	}
	if mode == filetable.Write {
		if err := fs.deallocateBlocks(h); err != nil {
			fs.close(h)
			return nil, err
		}
	}
	return h, nil
}

func (fs *fileSystem) close(h *filetable.Handle) (bool, error) {
	h.Lock()
	if h.Count <= 0 {
		h.Unlock()
		return false, errmsg.Closed
	}
	h.Count--
	n := h.Count
	h.Unlock()
	if n > 0 {
		return false, nil
	}
	if err := fs.ft.Ffree(h); err != nil {
		return false, err
	}
	return true, nil
}

func (fs *fileSystem) loadDir() error {
	h, err := fs.open(constant.Root, filetable.Read)
	if err != nil {
		return err
	}
	buf, err := fs.readDir(h)
	if _, cerr := fs.close(h); err == nil {
		err = cerr
	}
	if err != nil || len(buf) == 0 {
		return err
	}
	return fs.ft.LoadDir(buf)
}

func (fs *fileSystem) readDir(h *filetable.Handle) ([]byte, error) {
	size, err := fs.Fsize(h)
	if err != nil || size == 0 {
		return nil, err
	}
	buf := make([]byte, size)
	n, err := fs.Read(h, buf)
	switch {
	case err != nil:
		return nil, err
	case n != len(buf):
		return nil, errmsg.ReadFailed
	}
	return buf, nil
}

func (fs *fileSystem) newFileTable() filetable.Table {
	policy := directory.Truncate
	if fs.cfg.StrictNames {
		policy = directory.Strict
	}
	return filetable.New(directory.New(fs.sb.Inodes(), policy), fs.it, fs.lk, fs.log)
}
