package vault

import (
	"errors"
	"strings"

	"github.com/calvinalkan/campaign-vault/pkg/entity"
)

// Code classifies an engine failure.
type Code string

// Error codes.
const (
	CodeUnknownType         Code = "UNKNOWN_TYPE"
	CodeSchemaMissing       Code = "SCHEMA_MISSING"
	CodeJSONParseFailed     Code = "JSON_PARSE_FAILED"
	CodeNormalizationFailed Code = "RELATIONSHIP_NORMALIZATION_FAILED"
	CodeValidationFailed    Code = "VALIDATION_FAILED"
	CodeReadFailed          Code = "READ_FAILED"
	CodeWriteFailed         Code = "WRITE_FAILED"
	CodeInvalidRequest      Code = "INVALID_REQUEST"
)

// Sentinels matched by [errors.Is] against an [*Error] of the same code.
var (
	ErrUnknownType         = errors.New("unknown type")
	ErrSchemaMissing       = errors.New("schema missing")
	ErrJSONParseFailed     = errors.New("json parse failed")
	ErrNormalizationFailed = errors.New("relationship normalization failed")
	ErrValidationFailed    = errors.New("validation failed")
	ErrReadFailed          = errors.New("read failed")
	ErrWriteFailed         = errors.New("write failed")
	ErrInvalidRequest      = errors.New("invalid request")
)

var sentinels = map[Code]error{
	CodeUnknownType:         ErrUnknownType,
	CodeSchemaMissing:       ErrSchemaMissing,
	CodeJSONParseFailed:     ErrJSONParseFailed,
	CodeNormalizationFailed: ErrNormalizationFailed,
	CodeValidationFailed:    ErrValidationFailed,
	CodeReadFailed:          ErrReadFailed,
	CodeWriteFailed:         ErrWriteFailed,
	CodeInvalidRequest:      ErrInvalidRequest,
}

// Error is the error type returned by [Engine.LoadEntity] and
// [Engine.SaveEntity].
//
// The underlying cause comes first, followed by context:
//
//	relationship_ledger.allies[0] "Tomas": no entity matches (code=RELATIONSHIP_NORMALIZATION_FAILED entity_type=npc path=npc/mira-01.md)
//
// Use [errors.As] to reach the structured fields, and [errors.Is] with the
// package sentinels to test the code:
//
//	if errors.Is(err, vault.ErrValidationFailed) { ... }
type Error struct {
	Code Code

	// Path is the entity path as the caller passed it, slash-separated and
	// relative to the vault root when possible.
	Path string

	// EntityType is the resolved type, empty when resolution failed.
	EntityType entity.Type

	// Issues lists the field problems of a VALIDATION_FAILED error.
	Issues []entity.Issue

	Err error
}

// Error formats as "<cause> (code=X entity_type=Y path=Z)".
func (e *Error) Error() string {
	if e == nil {
		return ""
	}

	cause := string(e.Code)
	if e.Err != nil {
		cause = e.Err.Error()
	}

	return cause + " " + e.suffix()
}

func (e *Error) suffix() string {
	parts := []string{"code=" + string(e.Code)}

	if e.EntityType != "" {
		parts = append(parts, "entity_type="+string(e.EntityType))
	}

	if e.Path != "" {
		parts = append(parts, "path="+e.Path)
	}

	return "(" + strings.Join(parts, " ") + ")"
}

// Unwrap returns the underlying error for use with [errors.Is] and [errors.As].
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}

	return e.Err
}

// Is reports whether target is the sentinel of e's code.
func (e *Error) Is(target error) bool {
	if e == nil {
		return false
	}

	s, ok := sentinels[e.Code]

	return ok && s == target
}

// CodeOf returns the code of the first [*Error] in err's chain, or "".
func CodeOf(err error) Code {
	var vErr *Error
	if errors.As(err, &vErr) {
		return vErr.Code
	}

	return ""
}
