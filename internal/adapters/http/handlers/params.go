package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quote-catalog/internal/adapters/http/dto"
)

// pathID parses the :id path parameter. It writes a 400 and reports false
// when the parameter is not a positive integer.
func pathID(c *gin.Context) (int64, bool) {
	raw := c.Param("id")

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		dto.RespondWithErrorCode(c, dto.ErrorCodeBadRequest, "id must be a positive integer")
		return 0, false
	}

	return id, true
}

// bindQuery binds and validates query parameters into req, writing a 400 on failure.
func bindQuery[T any](c *gin.Context, req *T) bool {
	if err := dto.BindQueryAndValidate(c, req); err != nil {
		dto.RespondWithBindingError(c, err)
		return false
	}

	return true
}

// bindJSON binds and validates a JSON body into req, writing a 400 on failure.
func bindJSON[T any](c *gin.Context, req *T) bool {
	if err := dto.BindAndValidate(c, req); err != nil {
		dto.RespondWithBindingError(c, err)
		return false
	}

	return true
}
