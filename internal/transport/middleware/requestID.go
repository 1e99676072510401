package middleware

import (
	"github.com/ds124wfegd/item-analyzer/internal/pkg/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestid.Header)
		if id == "" || len(id) > 128 {
			id = uuid.New().String()
		}

		c.Request = c.Request.WithContext(requestid.NewContext(c.Request.Context(), id))
		c.Header(requestid.Header, id)
		c.Next()
	}
}
