package btree

import "errors"

// ErrDeleteNotImplemented is returned by Delete. Deletion requires
// rebalancing logic (borrow-from-sibling, merge, recursive underflow
// propagation) that this version intentionally does not implement -- the
// tree only ever grows. Callers needing to remove a key must fall back to
// marking the owning row deleted at the storage layer instead.
var ErrDeleteNotImplemented = errors.New("btree: delete is not implemented")

// ErrKeyNotFound is returned by Search when no entry matches the key.
var ErrKeyNotFound = errors.New("btree: key not found")

// ErrDuplicateKey is returned by Insert when the key's hash already has an
// entry in the tree.
var ErrDuplicateKey = errors.New("btree: duplicate key")
