package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/clinireason-backend/internal/data/repos"
	domainagg "github.com/yungbote/clinireason-backend/internal/domain/aggregates"
	"github.com/yungbote/clinireason-backend/internal/http/response"
	"github.com/yungbote/clinireason-backend/internal/platform/dbctx"
)

type UserHandler struct {
	users repos.UserRepo
}

func NewUserHandler(users repos.UserRepo) *UserHandler {
	return &UserHandler{users: users}
}

// GET /me
func (uh *UserHandler) GetMe(c *gin.Context) {
	userID, ok := caller(c)
	if !ok {
		return
	}
	me, err := uh.users.GetByID(dbctx.Context{Ctx: c.Request.Context()}, userID)
	if err != nil {
		fail(c, err)
		return
	}
	if me == nil {
		fail(c, domainagg.NewError(domainagg.CodeNotFound, "User.GetMe", "user not found", nil))
		return
	}
	response.RespondOK(c, gin.H{"me": me})
}
