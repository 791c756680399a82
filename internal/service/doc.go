// Package service holds the business logic of the custom-maps API:
// sign-in and account linking, token and session lifecycles, and the
// map operations that have to keep the document store and object
// storage consistent with each other.
//
// Mutations that span entities go through atomic database batches
// built in the repository layer. Object-storage side effects cannot
// join those transactions, so the map service orders them explicitly
// and compensates: uploads happen before the database write and are
// deleted again if the write fails; blob deletion happens before the
// map delete so a failure aborts the whole operation.
//
// Services depend on narrow interfaces declared in this package and
// return the sentinel errors from errors.go; handlers translate those
// into HTTP responses.
package service
