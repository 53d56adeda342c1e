package middleware

import (
	"bytes"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	gocache "github.com/patrickmn/go-cache"
)

type cachedResponse struct {
	status      int
	contentType string
	body        []byte
}

type cacheWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *cacheWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// ResponseCache caches successful GET responses in memory. Meant for the
// public read endpoints whose data changes rarely.
type ResponseCache struct {
	store *gocache.Cache
}

func NewResponseCache(ttl time.Duration) *ResponseCache {
	return &ResponseCache{store: gocache.New(ttl, 2*ttl)}
}

func (rc *ResponseCache) Cache() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		key := c.Request.URL.RequestURI()
		if entry, ok := rc.store.Get(key); ok {
			cached := entry.(*cachedResponse)
			c.Data(cached.status, cached.contentType, cached.body)
			c.Abort()
			return
		}

		writer := &cacheWriter{ResponseWriter: c.Writer, body: &bytes.Buffer{}}
		c.Writer = writer
		c.Next()

		if writer.Status() == http.StatusOK {
			rc.store.Set(key, &cachedResponse{
				status:      writer.Status(),
				contentType: writer.Header().Get("Content-Type"),
				body:        writer.body.Bytes(),
			}, gocache.DefaultExpiration)
		}
	}
}

// Invalidate drops every cached response. Called after admin writes that
// change public data.
func (rc *ResponseCache) Invalidate() {
	rc.store.Flush()
}
