package secretbox

import (
	"fmt"
	"io"
)

// redacted is what every fmt verb prints for a Box or guard. Formatting a
// secret container must never reach the value, whether or not a guard is
// currently active.
func redacted[T any](kind string) string {
	var zero T
	return fmt.Sprintf("secretbox.%s[%T]([REDACTED])", kind, zero)
}

func (b *Box[T]) String() string { return redacted[T]("Box") }

// GoString keeps %#v from dumping struct fields.
func (b *Box[T]) GoString() string { return b.String() }

// Format implements fmt.Formatter so all verbs produce the redacted form.
func (b *Box[T]) Format(f fmt.State, _ rune) { io.WriteString(f, b.String()) }

func (g *Guard[T]) String() string { return redacted[T]("Guard") }

func (g *Guard[T]) GoString() string { return g.String() }

func (g *Guard[T]) Format(f fmt.State, _ rune) { io.WriteString(f, g.String()) }

func (g *MutGuard[T]) String() string { return redacted[T]("MutGuard") }

func (g *MutGuard[T]) GoString() string { return g.String() }

func (g *MutGuard[T]) Format(f fmt.State, _ rune) { io.WriteString(f, g.String()) }
