package guild

// Keyed is implemented by every entity: the key is the identity used to match a
// desired entity with its live counterpart.
type Keyed interface {
	Key() string
}

// List is an ordered collection with lookup by identity key. When keys repeat
// the first entry wins.
type List[T Keyed] struct {
	items []T
	index map[string]int
}

func NewList[T Keyed](items ...T) List[T] {
	list := List[T]{
		items: make([]T, 0, len(items)),
		index: make(map[string]int, len(items)),
	}
	for _, item := range items {
		list.push(item)
	}
	return list
}

func (l *List[T]) push(item T) {
	if l.index == nil {
		l.index = make(map[string]int)
	}
	if _, ok := l.index[item.Key()]; !ok {
		l.index[item.Key()] = len(l.items)
	}
	l.items = append(l.items, item)
}

// Items returns a copy of the entries in insertion order.
func (l List[T]) Items() []T {
	items := make([]T, len(l.items))
	copy(items, l.items)
	return items
}

func (l List[T]) Len() int {
	return len(l.items)
}

func (l List[T]) Find(key string) (T, bool) {
	if i, ok := l.index[key]; ok {
		return l.items[i], true
	}
	var zero T
	return zero, false
}

func (l List[T]) Contains(key string) bool {
	_, ok := l.index[key]
	return ok
}

func (l List[T]) Keys() []string {
	keys := make([]string, len(l.items))
	for i, item := range l.items {
		keys[i] = item.Key()
	}
	return keys
}
