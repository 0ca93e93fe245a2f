package services

import (
	"context"
	"strings"

	"github.com/yungbote/clinireason-backend/internal/platform/dbctx"
)

func dbcOf(ctx context.Context) dbctx.Context { return dbctx.Context{Ctx: ctx} }

func strPtr(s string) *string { return &s }

func contains(s, sub string) bool { return strings.Contains(s, sub) }
