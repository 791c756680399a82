// Package repository implements data access for users, maps, likes,
// and sessions on top of the database package.
//
// Multi-record mutations (map creation, like toggling, the delete
// cascades) are built as atomic batches so related records never drift
// apart. Record identifiers are generated client-side, which lets a
// batch reference the new record from its sibling statements.
//
// Repositories return (nil, nil) for lookups that find nothing; the
// database sentinels are reserved for real failures.
package repository
