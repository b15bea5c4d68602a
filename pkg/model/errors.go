package model

import "errors"

var (
	// ErrAmbiguousRecord means more than one row matched a lookup that
	// must resolve to at most one record. This is pre-existing data
	// corruption and is never resolved by guessing.
	ErrAmbiguousRecord = errors.New("more than one record matches these params, fix the database")

	ErrNotFound = errors.New("record not found")
)
