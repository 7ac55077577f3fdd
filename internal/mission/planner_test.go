package mission_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yimbot/missionplanner/internal/mission"
	"github.com/yimbot/missionplanner/pkg/sweep"
)

func newPlanner(ttl time.Duration) *mission.Planner {
	metrics, err := mission.NewMetrics()
	if err != nil {
		panic(err)
	}
	return mission.NewPlanner(mission.Config{
		Logger:   zerolog.Nop(),
		CacheTTL: ttl,
		Metrics:  metrics,
	})
}

func TestPlanner_PlanDefaultMission(t *testing.T) {
	planner := newPlanner(time.Minute)

	result, err := planner.Plan(context.Background(), "scan", sweep.DefaultParams())
	require.NoError(t, err)

	assert.Equal(t, "scan", result.Path.Name)
	assert.Len(t, result.Path.Waypoints, 18)
	assert.Equal(t, sweep.Generate(sweep.DefaultParams()), result.Path.Waypoints)
	assert.False(t, result.Cached)

	assert.Equal(t, sweep.DefaultViewport(), result.Preview.Viewport)
	assert.Len(t, result.Preview.Points, 18)
	assert.Contains(t, result.Preview.SVGPath, "M 24,216 L 336,216")
}

func TestPlanner_DefaultName(t *testing.T) {
	planner := newPlanner(0)

	result, err := planner.Plan(context.Background(), "  ", sweep.DefaultParams())
	require.NoError(t, err)
	assert.Equal(t, mission.DefaultName, result.Path.Name)
}

func TestPlanner_Validation(t *testing.T) {
	planner := newPlanner(time.Minute)
	params := sweep.DefaultParams()
	params.Gap = -1
	params.Width = 0

	_, err := planner.Plan(context.Background(), "bad", params)

	var validationErr *mission.ValidationError
	require.True(t, errors.As(err, &validationErr))
	fields := []string{}
	for _, f := range validationErr.Errors {
		fields = append(fields, f.Field)
	}
	assert.ElementsMatch(t, []string{"width", "gap"}, fields)
}

func TestPlanner_CachesByParams(t *testing.T) {
	planner := newPlanner(50 * time.Millisecond)
	ctx := context.Background()

	first, err := planner.Plan(ctx, "a", sweep.DefaultParams())
	require.NoError(t, err)
	assert.False(t, first.Cached)

	second, err := planner.Plan(ctx, "b", sweep.DefaultParams())
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, "b", second.Path.Name, "name is not part of the cache key")
	assert.Equal(t, first.Path.Waypoints, second.Path.Waypoints)

	// Results are independent copies.
	second.Path.Waypoints[0].X = 999
	third, err := planner.Plan(ctx, "c", sweep.DefaultParams())
	require.NoError(t, err)
	assert.Equal(t, 0.0, third.Path.Waypoints[0].X)

	time.Sleep(100 * time.Millisecond)
	expired, err := planner.Plan(ctx, "d", sweep.DefaultParams())
	require.NoError(t, err)
	assert.False(t, expired.Cached)
}

func TestPlanner_CacheBounded(t *testing.T) {
	planner := mission.NewPlanner(mission.Config{
		Logger:    zerolog.Nop(),
		CacheTTL:  time.Hour,
		CacheSize: 2,
	})
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		params := sweep.DefaultParams()
		params.Width = float64(10 * i)
		_, err := planner.Plan(ctx, "", params)
		require.NoError(t, err)
	}

	assert.Equal(t, 2, planner.CacheLen())

	// The two most recent parameter sets survive.
	params := sweep.DefaultParams()
	params.Width = 50
	result, err := planner.Plan(ctx, "", params)
	require.NoError(t, err)
	assert.True(t, result.Cached)
}

func TestPlanner_Import(t *testing.T) {
	planner := newPlanner(0)

	result, err := planner.Import(context.Background(), []byte(`{
		"name": "legacy",
		"params": {"width": 10, "length": 4, "gap": 2},
		"waypoints": [[0, 0]]
	}`))
	require.NoError(t, err)

	expected := sweep.DefaultParams()
	expected.Width, expected.Length, expected.Gap = 10, 4, 2
	assert.Equal(t, "legacy", result.Path.Name)
	assert.Equal(t, expected, result.Path.Params)
	assert.Equal(t, sweep.Generate(expected), result.Path.Waypoints)

	_, err = planner.Import(context.Background(), []byte(`{"params": "wide"}`))
	var validationErr *mission.ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestPlanner_ConcurrentPlans(t *testing.T) {
	planner := newPlanner(time.Minute)
	expected := sweep.Generate(sweep.DefaultParams())

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := planner.Plan(context.Background(), "scan", sweep.DefaultParams())
			assert.NoError(t, err)
			assert.Equal(t, expected, result.Path.Waypoints)
		}()
	}
	wg.Wait()
}

func TestParamErrors(t *testing.T) {
	assert.Nil(t, mission.ParamErrors(nil, "params."))

	params := sweep.DefaultParams()
	params.Height = 0
	fields := mission.ParamErrors(params.Validate(), "params.")
	require.Len(t, fields, 1)
	assert.Equal(t, "params.height", fields[0].Field)

	other := mission.ParamErrors(errors.New("boom"), "params.")
	require.Len(t, other, 1)
	assert.Equal(t, "params", other[0].Field)
}

func TestPlanner_PreviewCustomViewport(t *testing.T) {
	planner := mission.NewPlanner(mission.Config{
		Logger:   zerolog.Nop(),
		Viewport: sweep.Viewport{Width: 100, Height: 100, Padding: 10},
	})

	fp := sweep.Plan("small", sweep.Params{Width: 10, Length: 10, Height: 2, Gap: 10, AvgSpeed: 1, MaxAlt: 2})
	preview := planner.Preview(fp)

	require.Len(t, preview.Points, 4)
	assert.Equal(t, sweep.ScreenPoint{X: 10, Y: 90}, preview.Points[0])
	assert.Equal(t, sweep.ScreenPoint{X: 90, Y: 90}, preview.Points[1])
	assert.Equal(t, "M 10,90 L 90,90 L 90,10 L 10,10", preview.SVGPath)
}
