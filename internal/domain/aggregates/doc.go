// Package aggregates defines domain-facing aggregate contracts.
//
// Contracts avoid persistence and transport details and mark the write
// boundaries where hierarchy invariants must hold atomically.
package aggregates
