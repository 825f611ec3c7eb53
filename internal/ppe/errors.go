package ppe

import "errors"

var (
	// ErrNotEnoughStock means the project stock row holds less than the requested quantity.
	ErrNotEnoughStock = errors.New("not enough stock")

	// ErrInvalidInput indicates a malformed issue request.
	ErrInvalidInput = errors.New("invalid input")
)
