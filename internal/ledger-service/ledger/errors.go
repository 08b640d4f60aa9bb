package ledger

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound    = errors.New("bet not found")
	ErrForbidden   = errors.New("bet belongs to another owner")
	ErrUnknownKind = errors.New("unknown catalog kind")
)

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError lista as violações campo a campo; nada é persistido
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) add(field, msg string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: msg})
}

func (e *ValidationError) orNil() *ValidationError {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// StoreFailure indica banco/cache indisponível ou operação rejeitada.
// Vai pro log com o erro original; o cliente só recebe uma mensagem genérica.
type StoreFailure struct {
	Op  string
	Err error
}

func (e *StoreFailure) Error() string { return fmt.Sprintf("store %s: %v", e.Op, e.Err) }

func (e *StoreFailure) Unwrap() error { return e.Err }

// storeError preserva ErrNotFound e StoreFailure já tipados; o resto vira StoreFailure
func storeError(op string, err error) error {
	if errors.Is(err, ErrNotFound) {
		return ErrNotFound
	}
	var sf *StoreFailure
	if errors.As(err, &sf) {
		return err
	}
	return &StoreFailure{Op: op, Err: err}
}
