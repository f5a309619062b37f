// Package guard decides what a protected page should show for a given
// session state.
package guard

type State int

const (
	Loading State = iota
	Unauthenticated
	Authenticated
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Authenticated:
		return "authenticated"
	default:
		return "unauthenticated"
	}
}

// Evaluate is total over its inputs. Loading wins over everything else so a
// page never flashes a redirect while the session is still being resolved.
func Evaluate(loading bool, authenticated bool) State {
	switch {
	case loading:
		return Loading
	case authenticated:
		return Authenticated
	default:
		return Unauthenticated
	}
}
