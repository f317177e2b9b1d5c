// Package common provides shared utilities and types used across the application.
package common

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyResult indicates that no rows survived cleaning. Callers recover by
// producing an empty result table rather than aborting.
var ErrEmptyResult = errors.New("no rows survived cleaning")

// FormatError indicates the input file is not usable as transaction data:
// either the workbook cannot be read at all, or required columns are missing.
// It aborts a run before any computation.
type FormatError struct {
	Err     error
	Path    string
	Missing []string
}

func (e *FormatError) Error() string {
	if len(e.Missing) > 0 {
		return fmt.Sprintf("invalid input %s: missing required columns: %s",
			e.Path, strings.Join(e.Missing, ", "))
	}
	if e.Err != nil {
		return fmt.Sprintf("invalid input %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("invalid input %s", e.Path)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

// DataFormatError indicates a field value that cannot be parsed, currently
// always an invoice date. It aborts cleaning.
type DataFormatError struct {
	Column string
	Value  string
	Row    int
}

func (e *DataFormatError) Error() string {
	return fmt.Sprintf("row %d: cannot parse %s value %q", e.Row, e.Column, e.Value)
}

// InsufficientDataError indicates a metric whose distribution cannot be split
// into five non-degenerate quantile bins.
type InsufficientDataError struct {
	Metric   string
	Distinct int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("metric %s has too few distinct values (%d) for quintile scoring; rerun with rank tie-breaking enabled",
		e.Metric, e.Distinct)
}

// UserError represents an error that should be shown to the user.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
	}
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new user-friendly error.
func NewUserError(userMessage string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		Err:         err,
	}
}
