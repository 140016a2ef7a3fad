// Package secretbox keeps a single sensitive value (a key, a password, a
// token) in memory that the rest of the process cannot casually read.
//
// A Box[T] owns one value of type T in a page-aligned allocation outside
// the Go heap. The pages are pinned against swap for the Box's whole
// lifetime and are kept at no-access protection except while a guard is
// held. Destroying the Box overwrites every byte with zero before the
// pages are unpinned and released, and that teardown also runs on the
// error path of the fallible constructors.
//
// Access follows a strict guard policy: any number of concurrent read
// guards, or exactly one write guard, never both. Protection is widened
// only as far as the outstanding guards require and is re-tightened to
// no-access the moment the last guard is released. Violations of the
// guard discipline panic rather than silently aliasing the secret.
//
// Prefer the callback helpers, which release on every exit path:
//
//	key := secretbox.Init(func(k *[32]byte) {
//		fillFromKDF(k[:])
//	})
//	defer key.Destroy()
//
//	key.With(func(k *[32]byte) {
//		seal(ciphertext, k)
//	})
//
// The guard objects returned by Expose and ExposeMut serve callers that
// need to hold access across non-lexical scopes; pair them with
// defer guard.Release().
//
// T must not contain Go pointers. The backing pages are invisible to the
// garbage collector, so any pointer stored in them would not keep its
// referent alive. Arrays and structs of scalars are the intended shapes.
//
// The guard accounting serializes protection transitions, but it does not
// make the value itself safe for unsynchronized concurrent mutation; a Box
// shared across goroutines needs the caller's own synchronization, just
// like any other Go value.
//
// Failures to pin, unpin, or reprotect the pages are integrity violations
// and always panic. The one recoverable failure class is the caller's own
// constructor error from TryInit and TryFromFunc, which is returned after
// the partially written secret has been wiped.
package secretbox
