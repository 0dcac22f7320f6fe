package benchmark

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// tickingCase returns a case whose every call advances clk by step.
func tickingCase(name string, clk *fakeClock, step time.Duration) *Case {
	return New(name, func() int {
		clk.Advance(step)
		return 1
	})
}

func TestCalibrateDoublesUntilMinimum(t *testing.T) {
	clk := &fakeClock{}
	cal := NewCalibrator(clk, Options{MinBatchDuration: time.Millisecond, MaxWarmupBatches: 4, MeasuredBatches: 7})

	plan, err := cal.Calibrate(context.Background(), tickingCase("tick", clk, time.Microsecond))
	require.NoError(t, err)

	assert.Equal(t, uint64(1024), plan.IterationsPerBatch)
	assert.Equal(t, 1024*time.Microsecond, plan.PilotElapsed)
	assert.Equal(t, 11, plan.PilotTrials)
	assert.False(t, plan.Capped)
	assert.Equal(t, 4, plan.WarmupBatches)
	assert.Equal(t, 7, plan.MeasuredBatches)
}

func TestCalibratePilotMeetsMinimum(t *testing.T) {
	for _, step := range []time.Duration{time.Nanosecond, 3 * time.Nanosecond, 750 * time.Nanosecond, 40 * time.Microsecond, 2 * time.Millisecond} {
		clk := &fakeClock{}
		min := 500 * time.Microsecond
		cal := NewCalibrator(clk, Options{MinBatchDuration: min})

		plan, err := cal.Calibrate(context.Background(), tickingCase("tick", clk, step))
		require.NoError(t, err, "step %s", step)
		assert.GreaterOrEqual(t, plan.PilotElapsed, min, "step %s", step)
		if plan.IterationsPerBatch > 1 {
			// One halving earlier would not have reached the minimum.
			assert.Less(t, time.Duration(plan.IterationsPerBatch/2)*step, min, "step %s", step)
		}
	}
}

func TestCalibrateRespectsIterationCap(t *testing.T) {
	clk := &fakeClock{}
	cal := NewCalibrator(clk, Options{MinBatchDuration: time.Second, MaxBatchIterations: 64})

	plan, err := cal.Calibrate(context.Background(), tickingCase("tick", clk, time.Nanosecond))
	require.NoError(t, err)
	assert.Equal(t, uint64(64), plan.IterationsPerBatch)
	assert.True(t, plan.Capped)
}

func TestCalibrateTimeoutOnHangingOperation(t *testing.T) {
	block := make(chan struct{})
	t.Cleanup(func() { close(block) })

	hang := New("hang", func() int {
		<-block
		return 0
	})
	cal := NewCalibrator(MonotonicClock{}, Options{CalibrationTimeout: 20 * time.Millisecond})

	start := time.Now()
	_, err := cal.Calibrate(context.Background(), hang)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCalibrationTimeout))
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestCalibrateReportsPanic(t *testing.T) {
	boom := New("boom", func() int { panic("boom") })
	cal := NewCalibrator(MonotonicClock{}, Options{})

	_, err := cal.Calibrate(context.Background(), boom)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrOperationPanic))
	assert.Contains(t, err.Error(), "boom")
}

func TestCalibrateCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	clk := &fakeClock{}
	_, err := NewCalibrator(clk, Options{}).Calibrate(ctx, tickingCase("tick", clk, time.Microsecond))
	assert.True(t, errors.Is(err, context.Canceled))
}
