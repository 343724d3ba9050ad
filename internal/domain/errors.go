package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies pipeline failures at the point where they happen.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindInputFormat
	KindQuoteUnavailable
	KindRatesUnavailable
	KindConnection
	KindMissingRelation
	KindDuplicateKey
	KindReshape
)

func (k ErrorKind) String() string {
	switch k {
	case KindInputFormat:
		return "input_format"
	case KindQuoteUnavailable:
		return "quote_unavailable"
	case KindRatesUnavailable:
		return "rates_unavailable"
	case KindConnection:
		return "connection"
	case KindMissingRelation:
		return "missing_relation"
	case KindDuplicateKey:
		return "duplicate_key"
	case KindReshape:
		return "reshape"
	default:
		return "unknown"
	}
}

// Error is the typed error carried through the pipeline.
type Error struct {
	Kind   ErrorKind
	Op     string // operation that failed, e.g. "workbook.load"
	Detail string // user-facing detail (sheet name, table, tickers)
	Err    error
}

func (e *Error) Error() string {
	msg := e.Op
	if e.Detail != "" {
		if msg != "" {
			msg += ": "
		}
		msg += e.Detail
	}
	if e.Err != nil {
		if msg != "" {
			msg += ": "
		}
		msg += e.Err.Error()
	}
	if msg == "" {
		return e.Kind.String()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error by kind, so errors.Is(err, &Error{Kind: KindReshape}) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Op == "" && t.Detail == "" && t.Err == nil
}

// NewError builds a typed error.
func NewError(kind ErrorKind, op, detail string, err error) *Error {
	return &Error{Kind: kind, Op: op, Detail: detail, Err: err}
}

// Errorf builds a typed error with a formatted detail.
func Errorf(kind ErrorKind, op, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Detail: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of the first *Error in err's chain, KindUnknown otherwise.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return err != nil && KindOf(err) == kind
}

// Sentinel input errors, wrapped into KindInputFormat errors by the loader.
var (
	ErrLegacyWorkbook   = errors.New("legacy .xls workbooks are not supported")
	ErrUnsupportedFile  = errors.New("unsupported file format")
	ErrSheetNotFound    = errors.New("worksheet not found")
	ErrMissingColumn    = errors.New("required column missing")
	ErrInvalidCellValue = errors.New("invalid cell value")
)
