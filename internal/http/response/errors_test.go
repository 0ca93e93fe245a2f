package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	domainagg "github.com/yungbote/clinireason-backend/internal/domain/aggregates"
)

func TestRespondDomainError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cases := []struct {
		name      string
		err       error
		status    int
		code      string
		retryable bool
	}{
		{"validation", domainagg.NewError(domainagg.CodeValidation, "op", "bad", nil), http.StatusBadRequest, "validation", false},
		{"precondition", domainagg.NewError(domainagg.CodePreconditionFailed, "op", "bad", nil), http.StatusBadRequest, "precondition_failed", false},
		{"invariant", domainagg.NewError(domainagg.CodeInvariantViolation, "op", "bad", nil), http.StatusUnprocessableEntity, "invariant_violation", false},
		{"not found", domainagg.NewError(domainagg.CodeNotFound, "op", "gone", nil), http.StatusNotFound, "not_found", false},
		{"conflict", domainagg.NewError(domainagg.CodeConflict, "op", "raced", nil), http.StatusConflict, "conflict", false},
		{"generation", domainagg.NewError(domainagg.CodeGenerationFailed, "op", "rejected", nil), http.StatusBadGateway, "generation_failed", false},
		{"retryable", domainagg.NewError(domainagg.CodeRetryable, "op", "locked", nil), http.StatusServiceUnavailable, "retryable", true},
		{"untyped", errors.New("pq: secret detail"), http.StatusInternalServerError, "internal", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(rec)
			RespondDomainError(c, tc.err)
			if rec.Code != tc.status {
				t.Fatalf("status = %d, want %d", rec.Code, tc.status)
			}
			var body ErrorEnvelope
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Error.Code != tc.code || body.Error.Retryable != tc.retryable {
				t.Fatalf("unexpected body %+v", body.Error)
			}
			if tc.name == "untyped" && body.Error.Message != "internal error" {
				t.Fatalf("internal message leaked: %q", body.Error.Message)
			}
		})
	}
}
