package httpx

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HandlerFunc is a handler that only produces a body or an error
type HandlerFunc[Resp any] func(c *gin.Context) (*Resp, error)

// Wrap renders a successful result as a bare 200 JSON body and routes
// failures through HandleError
func Wrap[Resp any](handler HandlerFunc[Resp]) gin.HandlerFunc {
	return func(c *gin.Context) {
		resp, err := handler(c)
		if err != nil {
			HandleError(c, err)
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}
