package testutil

import (
	"context"
	"sync"

	"gorm.io/gorm"

	"github.com/yungbote/clinireason-backend/internal/data/aggregates"
	"github.com/yungbote/clinireason-backend/internal/platform/dbctx"
)

// InjectedTxRunner runs aggregate bodies in a real transaction on DB and can
// force a rollback at begin or commit time. With a nil DB the body runs
// without a transaction.
type InjectedTxRunner struct {
	DB *gorm.DB

	FailBegin  error
	FailCommit error

	mu            sync.Mutex
	BeginCalls    int
	CommitCalls   int
	RollbackCalls int
}

var _ aggregates.TxRunner = (*InjectedTxRunner)(nil)

func (r *InjectedTxRunner) InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	r.count(&r.BeginCalls)
	if r.FailBegin != nil {
		return r.FailBegin
	}
	if fn == nil {
		r.count(&r.CommitCalls)
		return nil
	}

	body := func(tx *gorm.DB) error {
		if err := fn(dbctx.Context{Ctx: ctx, Tx: tx}); err != nil {
			return err
		}
		// Returning an error here makes gorm roll back what fn wrote.
		return r.FailCommit
	}
	var err error
	if r.DB != nil {
		err = r.DB.WithContext(ctx).Transaction(body)
	} else {
		err = body(nil)
	}
	if err != nil {
		r.count(&r.RollbackCalls)
		return err
	}
	r.count(&r.CommitCalls)
	return nil
}

func (r *InjectedTxRunner) count(c *int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	*c++
}
