package locker

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTable(t *testing.T) {
	r := require.New(t)
	tbl := New()

	a := tbl.Get(1)
	b := tbl.Get(1)
	c := tbl.Get(2)
	r.True(a == b)
	r.False(a == c)
	r.Equal(2, tbl.Len())

	a.RLock()
	b.RLock()
	a.RUnlock()
	r.Equal(2, tbl.Len())
	b.RUnlock()
	r.Equal(1, tbl.Len())
	c.Lock()
	c.Unlock()
	r.Equal(0, tbl.Len())
}

func TestExclusive(t *testing.T) {
	var wg sync.WaitGroup

	tbl := New()
	cnt := 0
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				l := tbl.Get(7)
				l.Lock()
				cnt++
				l.Unlock()
			}
		}()
	}
	wg.Wait()
	require.Equal(t, 8000, cnt)
	require.Equal(t, 0, tbl.Len())
}
