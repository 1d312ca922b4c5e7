package errors

import (
	"strings"
)

// Append clubs together all provided errors. Nil values are ignored.
//
// If given error implements unpacker interface, it is flattened and all
// containing errors are directly included into the result set.
func Append(errs ...error) error {
	var res multiError
	for _, e := range errs {
		if isNilErr(e) {
			continue
		}
		if u, ok := e.(unpacker); ok {
			res = append(res, u.Unpack()...)
		} else {
			res = append(res, e)
		}
	}
	if len(res) == 0 {
		return nil
	}
	return res
}

// multiError represents a group of errors. It is an error itself, as well as
// a container that allows inspection of each error individually.
type multiError []error

var _ unpacker = (multiError)(nil)

func (errs multiError) Error() string {
	switch len(errs) {
	case 0:
		return "<nil>"
	case 1:
		return errs[0].Error()
	}

	msgs := make([]string, len(errs))
	for i, err := range errs {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

// Unpack implements the unpacker interface.
func (errs multiError) Unpack() []error {
	return errs
}

// Code returns the code of the first contained error. This is consistent
// with the fail-fast approach where the first failure is reported.
func (errs multiError) Code() uint32 {
	if len(errs) == 0 {
		return 0
	}
	if c, ok := errs[0].(coder); ok {
		return c.Code()
	}
	return 1
}

func isNilErr(err error) bool {
	if err == nil {
		return true
	}
	if e, ok := err.(multiError); ok {
		return len(e) == 0
	}
	return false
}

// unpacker is implemented by errors that represent a collection of errors.
type unpacker interface {
	Unpack() []error
}
