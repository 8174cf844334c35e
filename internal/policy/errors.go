package policy

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// RegistryError reports a missing or unreadable registry file, or
// unparsable YAML. It aborts the current compilation.
type RegistryError struct {
	Path string
	Err  error
}

func (e *RegistryError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("registry: %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("registry: %s", e.Path)
}

func (e *RegistryError) Unwrap() error { return e.Err }

// ValidationError reports a charter or config failing a structural or
// field-level constraint. Field carries the failing field path when known.
type ValidationError struct {
	Field string
	Msg   string
	Err   error
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation: %s: %s", e.Field, e.Msg)
	}
	return fmt.Sprintf("validation: %s", e.Msg)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// ScopeError reports a requested scope missing from the charter, or a
// precedence list in which no scope resolved at all.
type ScopeError struct {
	Scope string
	Msg   string
}

func (e *ScopeError) Error() string {
	if e.Scope != "" {
		return fmt.Sprintf("scope %q: %s", e.Scope, e.Msg)
	}
	return fmt.Sprintf("scope: %s", e.Msg)
}

// wrapFieldError converts a validator error into a ValidationError carrying
// the first failing field path.
func wrapFieldError(context string, err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return &ValidationError{
			Field: fe.Namespace(),
			Msg:   fmt.Sprintf("%s: failed %q constraint", context, fe.Tag()),
			Err:   err,
		}
	}
	return &ValidationError{Msg: context + ": " + err.Error(), Err: err}
}
