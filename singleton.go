package nucleus

// Singleton locates the one entity carrying component c and returns its
// value. ok is false if zero or more than one entity carries it, enforcing
// the engine's singleton-component invariant: at most one live entity may
// ever hold a singleton component at a time.
func Singleton[T any](c AccessibleComponent[T], storage Storage) (value *T, ok bool) {
	node := Factory.NewQuery().And(c.Component)
	cursor := Factory.NewCursor(node, storage)

	if !cursor.Next() {
		return nil, false
	}
	value = c.GetFromCursor(cursor)

	if cursor.Next() {
		cursor.Reset()
		return nil, false
	}
	return value, true
}

// SingletonMut is Singleton for callers that intend to mutate the result;
// it is identical in behavior since AccessibleComponent already hands back
// a pointer into the archetype's backing storage.
func SingletonMut[T any](c AccessibleComponent[T], storage Storage) (value *T, ok bool) {
	return Singleton(c, storage)
}
