package aggregates_test

import (
	"testing"

	"github.com/yungbote/clinireason-backend/internal/data/aggregates"
	repotest "github.com/yungbote/clinireason-backend/internal/data/repos/testutil"
	types "github.com/yungbote/clinireason-backend/internal/domain"
	domainagg "github.com/yungbote/clinireason-backend/internal/domain/aggregates"
)

func TestContractsNameRealTables(t *testing.T) {
	tables := map[string]bool{}
	for _, m := range types.AllModels() {
		if tn, ok := m.(interface{ TableName() string }); ok {
			tables[tn.TableName()] = true
		}
	}

	db := repotest.DB(t)
	var zero aggregates.SubmissionAggregateDeps
	zero.Base.DB = db
	for _, agg := range []domainagg.Aggregate{
		newSessionAggregate(t, db, nil),
		aggregates.NewSubmissionAggregate(zero),
	} {
		c := agg.Contract()
		if !c.RequiresAggregateOwnedTx() {
			t.Fatalf("%s: writes must own their transaction", c.Name)
		}
		if len(c.Writes) == 0 {
			t.Fatalf("%s: no tables declared", c.Name)
		}
		for _, table := range c.Writes {
			if !tables[table] {
				t.Fatalf("%s declares unknown table %q", c.Name, table)
			}
		}
		if !c.Owns("session") {
			t.Fatalf("%s must own the session table", c.Name)
		}
	}
	if domainagg.SessionAggregateContract.Owns("notification") {
		t.Fatalf("session aggregate must not write notifications")
	}
}
