package services

import "github.com/samber/oops"

// Error codes attached to every error a service returns. The HTTP layer maps
// them to status codes; the oops Public message is the text shown to clients.
const (
	CodeValidation         = "VALIDATION_FAILED"
	CodeUnauthenticated    = "UNAUTHENTICATED"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeForbidden          = "FORBIDDEN"
	CodeNotFound           = "NOT_FOUND"
	CodeConflict           = "CONFLICT"
	CodeInternal           = "INTERNAL"
)

// ErrorCode returns the oops code carried by err, or CodeInternal when err
// carries none.
func ErrorCode(err error) string {
	if oopsErr, ok := oops.AsOops(err); ok {
		if code, ok := oopsErr.Code().(string); ok && code != "" {
			return code
		}
	}
	return CodeInternal
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code string) bool {
	return err != nil && ErrorCode(err) == code
}

func validationError(public string) error {
	return oops.Code(CodeValidation).Public(public).New(public)
}

func notFound(kind, id string) error {
	return oops.Code(CodeNotFound).
		With(kind+"_id", id).
		Public(kind + " does not exist").
		Errorf("%s %s not found", kind, id)
}

func internal(err error, msg string) error {
	return oops.Code(CodeInternal).Wrapf(err, "%s", msg)
}
