// Package model provides the domain model for drillhole data.
package model

import "errors"

var (
	// ErrMissingColumn is returned when a table lacks a required column.
	ErrMissingColumn = errors.New("missing required column")

	// ErrDuplicateHoleID is returned when collar data contains the same hole id twice.
	ErrDuplicateHoleID = errors.New("duplicate hole id")

	// ErrInvalidInterval is returned when an interval has from greater than to.
	ErrInvalidInterval = errors.New("interval from-depth greater than to-depth")

	// ErrInvalidConfig is returned when a configuration is incomplete.
	ErrInvalidConfig = errors.New("invalid configuration")
)
