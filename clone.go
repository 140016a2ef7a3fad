package secretbox

// CloneableSecret marks a value type as safe to duplicate. Secrets are
// non-cloneable by default; a type opts in by implementing CloneSecret,
// which returns a deep copy of the value. The copy is transient — Clone
// zeroes it as soon as it has been moved into the new Box.
type CloneableSecret[T any] interface {
	CloneSecret() T
}

// Clone builds an independent Box holding a duplicate of b's value. It is
// only available for capability-marked value types; cloning a plain T does
// not compile. The duplicate briefly exists in ordinary memory and is
// wiped before Clone returns, the same best-effort window as FromValue.
func Clone[T CloneableSecret[T]](b *Box[T]) *Box[T] {
	var dup T
	b.With(func(v *T) {
		dup = (*v).CloneSecret()
	})
	return FromValue(&dup)
}
