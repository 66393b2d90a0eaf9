package ast

import (
	"errors"
	"fmt"
	"strings"
)

type ErrCode string

const (
	ErrCodeUnknown            ErrCode = ""
	ErrCodeMalformedFragment  ErrCode = "MalformedFragment"
	ErrCodeUnboundAlias       ErrCode = "UnboundAlias"
	ErrCodeInvalidClauseState ErrCode = "InvalidClauseState"
	ErrCodeInvalidArgument    ErrCode = "InvalidArgument"
)

// Sentinels for errors.Is. Errors produced while building carry the same
// Code with a more specific While and Cause.
var (
	ErrMalformedFragment  = Err{Code: ErrCodeMalformedFragment, Cause: errors.New("malformed fragment")}
	ErrUnboundAlias       = Err{Code: ErrCodeUnboundAlias, Cause: errors.New("unbound alias")}
	ErrInvalidClauseState = Err{Code: ErrCodeInvalidClauseState, Cause: errors.New("invalid clause state")}
	ErrInvalidArgument    = Err{Code: ErrCodeInvalidArgument, Cause: errors.New("invalid argument")}
)

// Err is the error type of every construction failure in this module.
type Err struct {
	Code  ErrCode
	While string
	Cause error
}

func NewErr(code ErrCode, while string, cause error) Err {
	return Err{Code: code, While: while, Cause: cause}
}

func Errorf(code ErrCode, while string, format string, args ...any) Err {
	return Err{Code: code, While: while, Cause: fmt.Errorf(format, args...)}
}

func (e Err) Error() string {
	var b strings.Builder
	b.WriteString("[sqldsl]")
	if e.Code != ErrCodeUnknown {
		b.WriteByte(' ')
		b.WriteString(string(e.Code))
	}
	if e.While != "" {
		b.WriteString(" while ")
		b.WriteString(e.While)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

func (e Err) Unwrap() error { return e.Cause }

// Is matches on Code, so any Err with the same code satisfies
// errors.Is(err, ErrUnboundAlias) and friends.
func (e Err) Is(other error) bool {
	var target Err
	if errors.As(other, &target) && target.Code != ErrCodeUnknown {
		return target.Code == e.Code
	}
	return e.Cause != nil && errors.Is(e.Cause, other)
}

func IsMalformedFragment(err error) bool  { return errors.Is(err, ErrMalformedFragment) }
func IsUnboundAlias(err error) bool       { return errors.Is(err, ErrUnboundAlias) }
func IsInvalidClauseState(err error) bool { return errors.Is(err, ErrInvalidClauseState) }
func IsInvalidArgument(err error) bool    { return errors.Is(err, ErrInvalidArgument) }
