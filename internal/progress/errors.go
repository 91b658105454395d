package progress

import (
	"errors"
	"fmt"
)

// ErrStorageUnavailable is matched by every failure of the underlying
// key-value backend (disk full, database locked, redis down).
var ErrStorageUnavailable = errors.New("progress storage unavailable")

// ErrInvalidRecord is returned by Save when a record breaks its invariants.
var ErrInvalidRecord = errors.New("invalid progress record")

// StorageError describes a failed backend operation.
type StorageError struct {
	Op  string // "load" or "save"
	Key string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("progress %s %s: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrStorageUnavailable) hold for every StorageError.
func (e *StorageError) Is(target error) bool {
	return target == ErrStorageUnavailable
}
