// Package aggregates implements the domain aggregate contracts.
//
// Implementations compose table-level repos from internal/data/repos and own
// the transaction boundary of every write that touches derived progress state.
package aggregates
