// Package aggregates defines domain-facing aggregate contracts.
//
// Each aggregate is a write boundary: one call is one atomic unit, and the
// record, the profile counters, goal transitions, unlocked achievements and
// the notifications they raise commit or roll back together.
package aggregates
