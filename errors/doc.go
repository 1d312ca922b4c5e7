/*
Package errors implements custom error interfaces for the vault library.

The idea is to reuse as many standard errors as possible and only introduce
new ones if really needed.

Errors are matched by their root cause, not by message. Use the Is method of
a registered error to test an error chain:

	if errors.ErrNotFound.Is(err) { ... }

Error code 1 is reserved for errors that do not originate from a registered
root error.
*/
package errors
