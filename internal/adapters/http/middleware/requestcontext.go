package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/reqctx"
	"github.com/jsamuelsen/reqctx/internal/app"
)

// RequestContext returns middleware that opens a fresh request context for
// each request and seeds it with the request ID, correlation ID, and path.
//
// The context is installed in the handling goroutine's slot, so handlers can
// read it with reqctx.Get() and hand it to workers via reqctx.Wrap or
// reqctx.Go. It is also attached to the std request context so code reached
// through context.Context plumbing can recover it with reqctx.FromStdContext.
//
// Must run after RequestID and CorrelationID so the IDs are available, and
// handlers must stay on the request goroutine (deadline-only timeouts).
func RequestContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		scope := reqctx.NewScope()
		defer scope.Restore()

		rc := reqctx.Get()
		rc.SetData(app.DataKeyRequestID, app.NewStringData(MustGetRequestID(c)))
		rc.SetData(app.DataKeyCorrelationID, app.NewStringData(MustGetCorrelationID(c)))
		rc.SetData(app.DataKeyPath, app.NewStringData(c.FullPath()))

		c.Request = c.Request.WithContext(reqctx.NewStdContext(c.Request.Context(), rc))

		c.Next()
	}
}
