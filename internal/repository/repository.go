// Package repository holds the MongoDB implementations of the store contracts
// used by the services. Collections: transactions, mpesa_callbacks, settings,
// customers.
package repository

import "errors"

// ErrNotFound is returned when a lookup matches no document.
var ErrNotFound = errors.New("not found")
