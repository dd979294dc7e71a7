/*
Package blockfs implements a small disk-backed file system in pure Go. A single
disk image holds a superblock, a table of fixed-size inodes with direct and
single-indirect block maps, and a flat directory stored as the content of the
root file. Open files are shared cursors that are safe for concurrent use.
*/
package blockfs
