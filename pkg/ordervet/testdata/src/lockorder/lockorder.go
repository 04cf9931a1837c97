// Minimal mirror of the lockorder API surface, just enough for the
// analyzer's testdata to type-check under analysistest's GOPATH layout.
package lockorder

type ID struct{ d *idData }

type idData struct{ name string }

func NewID(name string) ID { return ID{d: &idData{name: name}} }

var Unlocked = NewID("unlocked")

type Token struct{ id ID }

func Root() *Token { return &Token{id: Unlocked} }

func (t *Token) ID() ID { return t.id }

func (t *Token) Release() {}

func DeclareOrder(lower, higher ID) error { return nil }

func MustDeclareOrder(lower, higher ID) {}

func Query(before, after ID) bool { return false }

type GuardedLock[T any] struct {
	id    ID
	value T
}

func NewGuardedLock[T any](id ID, value T) *GuardedLock[T] {
	return &GuardedLock[T]{id: id, value: value}
}

func (l *GuardedLock[T]) ID() ID { return l.id }

func (l *GuardedLock[T]) Acquire(tok *Token) (*Guard[T], *Token, error) {
	return &Guard[T]{lock: l}, &Token{id: l.id}, nil
}

func (l *GuardedLock[T]) With(tok *Token, fn func(value *T, tip *Token)) error {
	fn(&l.value, &Token{id: l.id})
	return nil
}

type Guard[T any] struct{ lock *GuardedLock[T] }

func (g *Guard[T]) Value() *T { return &g.lock.value }

func (g *Guard[T]) Unlock() {}
