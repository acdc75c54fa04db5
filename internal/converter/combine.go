package converter

import (
	"log/slog"
)

// Combine returns a converter equivalent to applying first and then second.
//
// Combine takes ownership of both operands. If either operand is trivial it
// is released and the other operand is returned as-is; otherwise a new
// Composite owning both operands is returned. Existing trees are never
// re-associated.
//
// Returns an INVALID_ARGUMENT error if an operand is nil, is not owned by the
// caller, or if both operands are the same value. On error neither operand
// is touched and the caller keeps ownership of both.
func Combine(first, second Converter) (Converter, error) {
	if first == nil || second == nil {
		return nil, invalidArgument("combine", "operand is nil")
	}
	if first == second {
		return nil, invalidArgument("combine", "operands are the same %s converter", first.Kind())
	}

	// Claim both operands; a concurrent Combine or Release of either one
	// makes the claim fail.
	f, s := first.header(), second.header()
	if !f.state.CompareAndSwap(stateOwned, stateConsumed) {
		return nil, invalidArgument("combine", "operand is a %s %s converter", f.stateName(), first.Kind())
	}
	if !s.state.CompareAndSwap(stateOwned, stateConsumed) {
		f.state.Store(stateOwned)
		return nil, invalidArgument("combine", "operand is a %s %s converter", s.stateName(), second.Kind())
	}

	switch {
	case first.Kind() == KindTrivial:
		f.state.Store(stateReleased)
		s.state.Store(stateOwned)
		slog.Debug("combine: trivial operand elided", "kept", second.Kind().String())
		return second, nil
	case second.Kind() == KindTrivial:
		s.state.Store(stateReleased)
		f.state.Store(stateOwned)
		slog.Debug("combine: trivial operand elided", "kept", first.Kind().String())
		return first, nil
	}
	return &Composite{first: first, second: second}, nil
}
