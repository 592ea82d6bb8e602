package health

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KOMKZ/yogan-property/testutil"
)

type stubChecker struct {
	name  string
	err   error
	block bool
}

func (s stubChecker) Name() string { return s.name }

func (s stubChecker) Check(ctx context.Context) error {
	if s.block {
		<-ctx.Done()
		return ctx.Err()
	}
	return s.err
}

// stubbornChecker ignores its context
type stubbornChecker struct{ release chan struct{} }

func (stubbornChecker) Name() string { return "stubborn" }

func (s stubbornChecker) Check(context.Context) error {
	<-s.release
	return nil
}

func TestAggregator_Healthy(t *testing.T) {
	a := NewAggregator(time.Second)
	a.Register(stubChecker{name: "database"}, stubChecker{name: "redis"}, nil)
	a.SetMetadata("version", "1.0.0")

	resp := a.Check(context.Background())
	assert.True(t, resp.IsHealthy())
	assert.Len(t, resp.Checks, 2)
	assert.Equal(t, "1.0.0", resp.Metadata["version"])
	assert.Equal(t, []string{"database", "redis"}, a.Names())
}

func TestAggregator_Unhealthy(t *testing.T) {
	a := NewAggregator(50 * time.Millisecond)
	a.Register(
		stubChecker{name: "database"},
		stubChecker{name: "redis", err: errors.New("connection refused")},
		stubChecker{name: "slow", block: true},
	)

	resp := a.Check(context.Background())
	assert.Equal(t, StatusUnhealthy, resp.Status)
	assert.Equal(t, StatusHealthy, resp.Checks["database"].Status)
	assert.Equal(t, "connection refused", resp.Checks["redis"].Error)
	assert.Equal(t, context.DeadlineExceeded.Error(), resp.Checks["slow"].Error)
}

func TestAggregator_TimeoutBeatsStubbornChecker(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	a := NewAggregator(20 * time.Millisecond)
	a.Register(stubbornChecker{release: release})

	start := time.Now()
	resp := a.Check(context.Background())
	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, StatusUnhealthy, resp.Status)
}

func TestAggregator_Empty(t *testing.T) {
	resp := NewAggregator(0).Check(context.Background())
	assert.True(t, resp.IsHealthy())
	assert.Empty(t, resp.Checks)
}

func TestHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)

	healthy := NewAggregator(time.Second)
	healthy.Register(stubChecker{name: "database"})
	engine := gin.New()
	RegisterRoutes(engine, healthy)

	resp := testutil.GET("/health").Do(engine)
	require.Equal(t, http.StatusOK, resp.Status())
	var body Response
	require.NoError(t, resp.JSON(&body))
	assert.Equal(t, StatusHealthy, body.Status)

	assert.Equal(t, http.StatusOK, testutil.GET("/health/liveness").Do(engine).Status())

	broken := NewAggregator(time.Second)
	broken.Register(stubChecker{name: "redis", err: errors.New("down")})
	engine = gin.New()
	RegisterRoutes(engine, broken)
	assert.Equal(t, http.StatusServiceUnavailable, testutil.GET("/health").Do(engine).Status())
}
