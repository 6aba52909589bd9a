// Package service holds the purchase core: the transaction coordinator,
// the ticket factory and the verification lookup, plus the admin sales
// report assembly.
package service

import (
	"errors"

	"github.com/iliyamo/event-ticketing/internal/repository"
)

// The purchase error taxonomy.  NotFound, InsufficientStock and
// TransientConflict are shared with the repository layer so a single
// errors.Is works from the store up to the handler.
var (
	ErrNotFound          = repository.ErrNotFound
	ErrInsufficientStock = repository.ErrInsufficientStock
	ErrTransientConflict = repository.ErrTransientConflict

	// ErrInvalidQuantity rejects quantities outside 1..MaxPurchaseQuantity.
	ErrInvalidQuantity = errors.New("invalid quantity")
	// ErrPersistence wraps storage failures that are not worth retrying.
	ErrPersistence = errors.New("persistence failure")
)
