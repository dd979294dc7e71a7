package locker

func New() *table {
	return &table{mp: make(map[int64]*locker)}
}

func (t *table) Len() int {
	t.Lock()
	defer t.Unlock()
	return len(t.mp)
}

func (t *table) Get(k int64) Locker {
	t.Lock()
	defer t.Unlock()
	l, ok := t.mp[k]
	if !ok {
		l = &locker{k: k, t: t}
		t.mp[k] = l
	}
	l.n++
	return l
}

func (t *table) put(l *locker) {
	t.Lock()
	defer t.Unlock()
	if l.n--; l.n == 0 {
		delete(t.mp, l.k)
	}
}
