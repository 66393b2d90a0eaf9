package ast

import (
	"fmt"
	"slices"
)

// CheckRefs fails with UnboundAlias when a fragment mentions an alias that is
// not part of scope. Fragment errors are returned first.
func CheckRefs(while string, scope []Ref, frags ...Fragment) error {
	for _, f := range frags {
		if f.err != nil {
			return f.err
		}
		for _, r := range f.refs {
			if !slices.Contains(scope, r) {
				return NewErr(ErrCodeUnboundAlias, while, unboundCause(r))
			}
		}
	}
	return nil
}

func unboundCause(r Ref) error {
	if r.Source == "" {
		return fmt.Errorf("alias %q is not bound in from or joins", r.Alias)
	}
	return fmt.Errorf("alias %q of %q is not bound in from or joins", r.Alias, r.Source)
}
