package tuner

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const gib = int64(1 << 30)

func TestDetect(t *testing.T) {
	res, err := Detect()
	require.NoError(t, err)

	assert.Equal(t, runtime.NumCPU(), res.Cores)
	assert.GreaterOrEqual(t, res.TotalMemory, int64(64<<20))
	assert.Positive(t, res.FreeMemory)
	assert.LessOrEqual(t, res.FreeMemory, res.TotalMemory)
}

func TestPlanFor(t *testing.T) {
	laptop := Resources{Cores: 8, TotalMemory: 16 * gib, FreeMemory: 8 * gib}

	tests := []struct {
		name        string
		res         Resources
		workers     int
		wantWorkers int
		wantCache   int64
	}{
		{"single core", Resources{Cores: 1, TotalMemory: gib, FreeMemory: gib / 4}, 0, minWorkers, minCacheBytes},
		{"laptop", laptop, 0, 8, 128 << 20},
		{"large server", Resources{Cores: 128, TotalMemory: 512 * gib, FreeMemory: 256 * gib}, 0, maxWorkers, maxCacheBytes},
		{"negative override ignored", laptop, -3, 8, 128 << 20},
		{"sequential", laptop, 1, 1, 128 << 20},
		{"explicit", laptop, 16, 16, 128 << 20},
		{"override capped", laptop, 100, maxWorkers, 128 << 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PlanFor(tt.res, tt.workers)
			assert.Equal(t, tt.wantWorkers, got.Workers)
			assert.Equal(t, tt.wantCache, got.CacheBlockBytes)
		})
	}
}

func TestFallback(t *testing.T) {
	p := Fallback(0)
	assert.Equal(t, max(minWorkers, min(runtime.NumCPU(), maxWorkers)), p.Workers)
	assert.Equal(t, int64(minCacheBytes), p.CacheBlockBytes)

	assert.Equal(t, 3, Fallback(3).Workers)
}

func TestPlanForDetectedHost(t *testing.T) {
	res, err := Detect()
	require.NoError(t, err)

	p := PlanFor(res, 0)
	assert.GreaterOrEqual(t, p.Workers, minWorkers)
	assert.LessOrEqual(t, p.Workers, maxWorkers)
	assert.GreaterOrEqual(t, p.CacheBlockBytes, int64(minCacheBytes))
	assert.LessOrEqual(t, p.CacheBlockBytes, int64(maxCacheBytes))
}
