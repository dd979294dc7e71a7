package directory

const (
	Truncate = iota // cut over-long names
	Strict          // reject over-long names
)

type Directory interface {
	Size() int
	Alloc(string) (int16, error)
	Free(int16) bool
	Lookup(string) (int16, bool)
	Name(int16) (string, bool)
	Bytes() []byte
	Load([]byte) error
}

type directory struct {
	policy int
	fsize  []int32  // name length in characters, 0 = free slot
	fnames [][]rune // each element holds up to constant.MaxChars runes
}
