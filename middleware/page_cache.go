package middleware

import (
	"bytes"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/KOMKZ/yogan-property/cache"
	"github.com/KOMKZ/yogan-property/logger"
)

// CacheHeader reports HIT or MISS for page-cached routes
const CacheHeader = "X-Cache"

type PageCacheConfig struct {
	TTL       time.Duration
	KeyPrefix string
}

type cachedPage struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

// bodyRecorder tees the response body while it is written
type bodyRecorder struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *bodyRecorder) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *bodyRecorder) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// PageCache replays whole GET 200 responses keyed by method and request
// URI for cfg.TTL. It knows nothing about the data cache behind the
// handler. A failing store is bypassed, not reported to the client.
func PageCache(store cache.Store, cfg PageCacheConfig, log logger.CtxLogger) gin.HandlerFunc {
	if cfg.TTL <= 0 {
		cfg.TTL = cache.DefaultPageTTL
	}
	if log == nil {
		log = logger.GetLogger("http")
	}
	serializer := cache.NewJSONSerializer()

	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.Next()
			return
		}
		ctx := c.Request.Context()
		key := cfg.KeyPrefix + c.Request.Method + ":" + c.Request.URL.RequestURI()

		data, err := store.Get(ctx, key)
		switch {
		case err == nil:
			var page cachedPage
			if derr := serializer.Deserialize(data, &page); derr == nil {
				c.Header(CacheHeader, "HIT")
				c.Data(page.Status, page.ContentType, page.Body)
				c.Abort()
				return
			}
			log.WarnCtx(ctx, "page cache entry undecodable", zap.String("key", key))
		case errors.Is(err, cache.ErrCacheMiss):
		default:
			log.WarnCtx(ctx, "page cache unavailable, bypassing",
				zap.String("store", store.Name()), zap.String("key", key), zap.Error(err))
			c.Next()
			return
		}

		rec := &bodyRecorder{ResponseWriter: c.Writer}
		c.Writer = rec
		c.Header(CacheHeader, "MISS")
		c.Next()
		c.Writer = rec.ResponseWriter

		if rec.Status() != http.StatusOK {
			return
		}
		data, err = serializer.Serialize(cachedPage{
			Status:      rec.Status(),
			ContentType: rec.Header().Get("Content-Type"),
			Body:        rec.body.Bytes(),
		})
		if err == nil {
			err = store.Set(ctx, key, data, cfg.TTL)
		}
		if err != nil {
			log.WarnCtx(ctx, "page cache set failed", zap.String("key", key), zap.Error(err))
		}
	}
}
