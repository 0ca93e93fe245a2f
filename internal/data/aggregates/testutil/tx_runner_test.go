package testutil

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	repotest "github.com/yungbote/clinireason-backend/internal/data/repos/testutil"
	"github.com/yungbote/clinireason-backend/internal/domain/user"
	"github.com/yungbote/clinireason-backend/internal/platform/dbctx"
)

func TestInjectedTxRunnerCommitsOnSuccess(t *testing.T) {
	db := repotest.DB(t)
	r := &InjectedTxRunner{DB: db}
	id := uuid.New()
	err := r.InTx(context.Background(), func(dbc dbctx.Context) error {
		return dbc.Tx.Create(&user.User{ID: id, Email: id.String() + "@example.test", Role: user.RoleStudent}).Error
	})
	if err != nil {
		t.Fatalf("InTx: %v", err)
	}
	var n int64
	db.Model(&user.User{}).Where("id = ?", id).Count(&n)
	if n != 1 {
		t.Fatalf("expected committed row, got %d", n)
	}
	if r.BeginCalls != 1 || r.CommitCalls != 1 || r.RollbackCalls != 0 {
		t.Fatalf("counters begin=%d commit=%d rollback=%d", r.BeginCalls, r.CommitCalls, r.RollbackCalls)
	}
}

func TestInjectedTxRunnerFailCommitDiscardsWrites(t *testing.T) {
	db := repotest.DB(t)
	commitErr := errors.New("commit failed")
	r := &InjectedTxRunner{DB: db, FailCommit: commitErr}
	id := uuid.New()
	err := r.InTx(context.Background(), func(dbc dbctx.Context) error {
		return dbc.Tx.Create(&user.User{ID: id, Email: id.String() + "@example.test", Role: user.RoleStudent}).Error
	})
	if !errors.Is(err, commitErr) {
		t.Fatalf("expected commit error, got %v", err)
	}
	var n int64
	db.Model(&user.User{}).Where("id = ?", id).Count(&n)
	if n != 0 {
		t.Fatalf("expected rollback, found %d rows", n)
	}
	if r.CommitCalls != 0 || r.RollbackCalls != 1 {
		t.Fatalf("counters commit=%d rollback=%d", r.CommitCalls, r.RollbackCalls)
	}
}

func TestInjectedTxRunnerFailBeginSkipsBody(t *testing.T) {
	beginErr := errors.New("begin failed")
	r := &InjectedTxRunner{FailBegin: beginErr}
	called := false
	err := r.InTx(context.Background(), func(dbctx.Context) error {
		called = true
		return nil
	})
	if !errors.Is(err, beginErr) || called {
		t.Fatalf("err=%v called=%v", err, called)
	}
}
