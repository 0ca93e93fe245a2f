package aggregates

import "slices"

// WriteTxOwnership says who opens the transaction around a write.
type WriteTxOwnership string

const (
	// WriteTxOwnedByAggregate: aggregate methods open and close their own transaction.
	WriteTxOwnedByAggregate WriteTxOwnership = "aggregate_owned"
)

// ReadPolicy says which reads an aggregate is allowed to expose.
type ReadPolicy string

const (
	// ReadPolicyInvariantScoped: only reads needed to decide an invariant inside a write.
	ReadPolicyInvariantScoped ReadPolicy = "invariant_scoped_reads"
	// ReadPolicyTableRepoQueries: listing and detail reads stay on table repos.
	ReadPolicyTableRepoQueries ReadPolicy = "table_repo_queries"
)

// Contract describes an aggregate's write boundary.
type Contract struct {
	Name             string
	WriteTxOwnership WriteTxOwnership
	ReadPolicy       ReadPolicy
	// Writes lists every table the aggregate inserts into, updates or deletes from.
	Writes []string
	Notes  string
}

type Aggregate interface {
	Contract() Contract
}

func (c Contract) RequiresAggregateOwnedTx() bool {
	return c.WriteTxOwnership == WriteTxOwnedByAggregate
}

// Owns reports whether table is inside the aggregate's write boundary.
func (c Contract) Owns(table string) bool {
	return slices.Contains(c.Writes, table)
}
