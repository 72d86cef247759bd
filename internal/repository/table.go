package repository

// table is an id-keyed collection that remembers insertion order.
type table[T any] struct {
	items map[string]T
	order []string
}

func newTable[T any]() *table[T] {
	return &table[T]{items: make(map[string]T)}
}

func (t *table[T]) get(id string) (T, bool) {
	v, ok := t.items[id]
	return v, ok
}

func (t *table[T]) has(id string) bool {
	_, ok := t.items[id]
	return ok
}

func (t *table[T]) len() int {
	return len(t.order)
}

func (t *table[T]) appendItem(id string, v T) {
	t.items[id] = v
	t.order = append(t.order, id)
}

func (t *table[T]) prependItem(id string, v T) {
	t.items[id] = v
	t.order = append([]string{id}, t.order...)
}

// set replaces an existing item in place and returns the previous value.
func (t *table[T]) set(id string, v T) (T, bool) {
	prev, ok := t.items[id]
	if !ok {
		return prev, false
	}
	t.items[id] = v
	return prev, true
}

// remove deletes the item and returns it with its former position.
func (t *table[T]) remove(id string) (T, int, bool) {
	v, ok := t.items[id]
	if !ok {
		return v, -1, false
	}
	delete(t.items, id)
	idx := t.index(id)
	if idx >= 0 {
		t.order = append(t.order[:idx], t.order[idx+1:]...)
	}
	return v, idx, true
}

func (t *table[T]) insertAt(idx int, id string, v T) {
	if idx < 0 || idx > len(t.order) {
		idx = len(t.order)
	}
	t.items[id] = v
	t.order = append(t.order, "")
	copy(t.order[idx+1:], t.order[idx:])
	t.order[idx] = id
}

func (t *table[T]) index(id string) int {
	for i, existing := range t.order {
		if existing == id {
			return i
		}
	}
	return -1
}

// list returns items in order; a nil match keeps everything.
func (t *table[T]) list(match func(T) bool) []T {
	result := make([]T, 0, len(t.order))
	for _, id := range t.order {
		v := t.items[id]
		if match == nil || match(v) {
			result = append(result, v)
		}
	}
	return result
}
