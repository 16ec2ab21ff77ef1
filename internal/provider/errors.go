package provider

import (
	"errors"
	"net/http"
)

// Failure kinds. Match them with errors.Is.
var (
	ErrBadConfiguration = errors.New("bad configuration")
	ErrNotFound         = errors.New("not found")
	ErrRemote           = errors.New("remote call error")
)

// Failure is the single structured error returned by providers.
type Failure struct {
	// Kind is one of ErrBadConfiguration, ErrNotFound or ErrRemote.
	Kind error
	// Code is a coarse status-like classification.
	Code    int
	Message string
	// Err is the wrapped cause, if any.
	Err error
}

func (f *Failure) Error() string {
	if f.Err != nil {
		return f.Message + ": " + f.Err.Error()
	}
	return f.Message
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (f *Failure) Unwrap() []error {
	if f.Err == nil {
		return []error{f.Kind}
	}
	return []error{f.Kind, f.Err}
}

// BadConfiguration reports a configuration that cannot be queried.
func BadConfiguration(msg string) *Failure {
	return &Failure{Kind: ErrBadConfiguration, Code: http.StatusBadRequest, Message: msg}
}

// NotFound reports a missing backend capability.
func NotFound(msg string, err error) *Failure {
	return &Failure{Kind: ErrNotFound, Code: http.StatusNotFound, Message: msg, Err: err}
}

// Remote reports a backend call that executed but failed.
func Remote(msg string, err error) *Failure {
	return &Failure{Kind: ErrRemote, Code: http.StatusInternalServerError, Message: msg, Err: err}
}

// AsFailure returns the Failure in err's chain, if any.
func AsFailure(err error) (*Failure, bool) {
	var f *Failure
	if errors.As(err, &f) {
		return f, true
	}
	return nil, false
}
