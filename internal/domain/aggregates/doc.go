// Package aggregates defines the write boundaries of the reasoning and review domains
// and the typed error codes every layer above the store reports.
//
// Contracts avoid persistence details; implementations live in internal/data/aggregates.
package aggregates
