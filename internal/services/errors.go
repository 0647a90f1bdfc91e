package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrExhaustedCatalog   = errors.New("all prizes have been given out")
	ErrDuplicatePlay      = errors.New("this registration has already played")
	ErrNoActiveSession    = errors.New("no active registration for this session")
	ErrSchema             = errors.New("voucher CSV header is missing required columns")
	ErrRowFormat          = errors.New("voucher CSV row is malformed")
	ErrDuplicateCode      = errors.New("voucher code already exists")
	ErrEmptyBatch         = errors.New("voucher CSV contains no rows")
	ErrNotFound           = errors.New("voucher code not found")
	ErrAlreadyRedeemed    = errors.New("voucher code already redeemed")
	ErrPrizeNotFound      = errors.New("prize not found")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrWeakPassword       = errors.New("password must be at least 6 characters")
)

// SchemaError lists the header columns a batch is missing.
type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("CSV must include: %s (missing %s)",
		strings.Join(RequiredVoucherColumns, ", "), strings.Join(e.Missing, ", "))
}

func (e *SchemaError) Unwrap() error { return ErrSchema }

// RowFormatError identifies the offending data row (1-based).
// Err carries the underlying cause, such as a *csv.ParseError.
type RowFormatError struct {
	Row    int
	Column string
	Value  string
	Err    error
}

func (e *RowFormatError) Error() string {
	switch {
	case e.Column == "" && e.Err != nil:
		return fmt.Sprintf("row %d: %v", e.Row, e.Err)
	case e.Column == "":
		return fmt.Sprintf("row %d: wrong number of fields", e.Row)
	case e.Err != nil:
		return fmt.Sprintf("row %d: invalid %s %q: %v", e.Row, e.Column, e.Value, e.Err)
	}
	return fmt.Sprintf("row %d: invalid %s %q", e.Row, e.Column, e.Value)
}

func (e *RowFormatError) Unwrap() error { return ErrRowFormat }

// DuplicateCodeError names the colliding voucher code.
type DuplicateCodeError struct {
	Code string
}

func (e *DuplicateCodeError) Error() string {
	return fmt.Sprintf("voucher code %q already exists", e.Code)
}

func (e *DuplicateCodeError) Unwrap() error { return ErrDuplicateCode }
