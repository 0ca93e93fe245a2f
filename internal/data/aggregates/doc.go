// Package aggregates implements the domain aggregate contracts on top of the table repos.
//
// Every write method runs inside one transaction via executeWrite, so a failed
// invariant check or lost compare-and-set leaves no partial rows behind.
package aggregates
