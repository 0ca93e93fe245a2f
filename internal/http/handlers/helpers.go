package handlers

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	domainagg "github.com/yungbote/clinireason-backend/internal/domain/aggregates"
	"github.com/yungbote/clinireason-backend/internal/http/response"
	"github.com/yungbote/clinireason-backend/internal/platform/ctxutil"
)

// caller returns the authenticated user id or writes 401.
func caller(c *gin.Context) (uuid.UUID, bool) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		c.AbortWithStatusJSON(401, gin.H{"error": gin.H{"message": "not authenticated", "code": "unauthorized"}})
		return uuid.Nil, false
	}
	return rd.UserID, true
}

func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(strings.TrimSpace(c.Param(name)))
	if err != nil || id == uuid.Nil {
		badRequest(c, "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

func intParam(c *gin.Context, name string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(c.Param(name)))
	if err != nil {
		badRequest(c, "invalid "+name)
		return 0, false
	}
	return n, true
}

// queryLimit leaves range checks to the services.
func queryLimit(c *gin.Context) int {
	n, _ := strconv.Atoi(strings.TrimSpace(c.Query("limit")))
	return n
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return false
	}
	return true
}

func badRequest(c *gin.Context, msg string) {
	response.RespondDomainError(c, domainagg.NewError(domainagg.CodeValidation, "http", msg, nil))
}

func fail(c *gin.Context, err error) {
	_ = c.Error(err)
	response.RespondDomainError(c, err)
}
