package middleware

import (
	"net/http"

	"github.com/examify/examify-backend/internal/model"
	"github.com/examify/examify-backend/internal/response"
	"github.com/gin-gonic/gin"
)

// RequireRole rejects callers whose role is not role. Must run after RequireAuth.
func RequireRole(role model.Role) gin.HandlerFunc {
	code := response.ErrForbidden
	switch role {
	case model.RoleExaminer:
		code = response.ErrExaminerOnly
	case model.RoleStudent:
		code = response.ErrStudentAccessOnly
	}

	return func(c *gin.Context) {
		p := GetPrincipal(c)
		if p == nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
			return
		}
		if p.Role != role {
			response.AbortFail(c, http.StatusForbidden, code)
			return
		}
		c.Next()
	}
}
