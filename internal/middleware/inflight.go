package middleware

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
)

// InflightGuard rejects a second concurrent submission of the same
// operation from the same client while one is still outstanding. It is
// the server-side counterpart of the browser disabling the triggering
// button: the slot is released on every exit path, so a failed call
// never wedges the client out.
type InflightGuard struct {
	mu     sync.Mutex
	active map[string]struct{}
}

func NewInflightGuard() *InflightGuard {
	return &InflightGuard{active: make(map[string]struct{})}
}

func (g *InflightGuard) tryAcquire(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, busy := g.active[key]; busy {
		return false
	}
	g.active[key] = struct{}{}
	return true
}

func (g *InflightGuard) release(key string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.active, key)
}

// Guard returns the middleware for one named operation.
func (g *InflightGuard) Guard(op string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := op + "|" + c.ClientIP()
		if !g.tryAcquire(key) {
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{
				"error": "A previous submission is still being processed. Please wait for it to finish.",
			})
			return
		}
		defer g.release(key)

		c.Next()
	}
}
