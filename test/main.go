package main

import (
	"bytes"
	"fmt"
	"log"

	"github.com/infinivision/blockfs/filetable"
	"github.com/infinivision/blockfs/fs"
)

func main() {
	cfg := fs.DefaultConfig()
	cfg.DiskName = "test.disk"
	fsys, err := fs.Open(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer fsys.Shutdown()

	fmt.Printf("volume %v\n", fsys.VolumeID())
	{
		for i := 0; i < 10; i++ {
			h, err := fsys.Open(fmt.Sprintf("u_%v", i), filetable.Write)
			if err != nil {
				log.Fatal(err)
			}
			if _, err := fsys.Write(h, bytes.Repeat([]byte(fmt.Sprintf("%v", i)), 1000*(i+1))); err != nil {
				log.Fatal(err)
			}
			if _, err := fsys.Close(h); err != nil {
				log.Fatal(err)
			}
		}
	}
	{
		for i := 0; i < 10; i++ {
			h, err := fsys.Open(fmt.Sprintf("u_%v", i), filetable.Read)
			if err != nil {
				log.Fatal(err)
			}
			buf := make([]byte, 1000*(i+1))
			if _, err := fsys.Read(h, buf); err != nil {
				log.Fatal(err)
			}
			if bytes.Compare(buf, bytes.Repeat([]byte(fmt.Sprintf("%v", i)), 1000*(i+1))) != 0 {
				log.Fatal(fmt.Errorf("u_%v: content mismatch\n", i))
			}
			fsys.Close(h)
		}
	}
	{
		for i := 0; i < 10; i += 2 {
			if err := fsys.Delete(fmt.Sprintf("u_%v", i)); err != nil {
				log.Fatal(err)
			}
		}
		for _, name := range fsys.List() {
			fmt.Printf("%s\n", name)
		}
	}
}
