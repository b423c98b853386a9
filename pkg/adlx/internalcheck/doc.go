// Package internalcheck provides internal validation and testing utilities.
//
// This package contains policy checks enforced over the adlxwrapper source
// tree at test time. It is not intended for external use and the API may
// change without notice.
//
// # Internal Use Only
//
// This package is part of the internal implementation and should not be
// imported by applications using the wrapper. Use the public API provided
// by pkg/adlx instead.
package internalcheck
