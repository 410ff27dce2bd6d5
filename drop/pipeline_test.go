package drop

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// S5 — Cancellation under load.
func TestCancellationUnderLoad(t *testing.T) {
	root := NewSupplyPipe[int]("root", 4, nil)

	var consumed int64
	consumer := NewConsumer[int]("slow", root.Pipe, func(int) error {
		atomic.AddInt64(&consumed, 1)
		time.Sleep(2 * time.Millisecond)
		return nil
	}, WithConcurrency(4))

	supplier := NewSupplier[int]("source", root, counterSupplier(10000))

	pipeline, err := NewBuilder[int](root).Use(supplier).Use(consumer).Build()
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- pipeline.Run(context.Background()) }()

	time.Sleep(100 * time.Millisecond)
	pipeline.Stop()

	select {
	case err := <-done:
		require.NoError(t, err, "Stop must return cleanly with no surfaced error")
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after Stop")
	}

	require.Less(t, atomic.LoadInt64(&consumed), int64(10000))
	require.Positive(t, consumer.Stats().CanceledWork)
}

func counterSupplier(n int) func() (int, bool, error) {
	i := 0
	return func() (int, bool, error) {
		if i >= n {
			return 0, false, nil
		}
		v := i
		i++
		return v, true, nil
	}
}

func TestPipelineRunsExactlyOnce(t *testing.T) {
	root := NewSupplyPipe[int]("root", 1, nil)
	consumer := NewConsumer[int]("c", root.Pipe, func(int) error { return nil })
	supplier := NewSupplier[int]("s", root, singleValueSupplier(1))

	pipeline, err := NewBuilder[int](root).Use(supplier).Use(consumer).Build()
	require.NoError(t, err)

	require.NoError(t, pipeline.Run(context.Background()))

	err = pipeline.Run(context.Background())
	require.Error(t, err)
}

func TestPipelineGetWrapsOutcome(t *testing.T) {
	root := NewSupplyPipe[int]("root", 1, nil)
	output := NewPipe[int]("out", 1)
	fn := NewFunction[int, int]("f", root.Pipe, output, func(int) (int, error) {
		return 0, errBoom
	})
	drain := NewDrain[int]("d", output)

	require.NoError(t, root.PushValue(1))
	root.SetEndOfInput(nil)

	pipeline, err := NewBuilder[int](root).Use(fn).Use(drain).Build()
	require.NoError(t, err)

	outcome := pipeline.Get(context.Background())
	require.False(t, outcome.IsOk())
	require.Error(t, outcome.Err())
}

func TestPipelineBottlenecks(t *testing.T) {
	root := NewSupplyPipe[int]("root", 1, nil)
	consumer := NewConsumer[int]("slow", root.Pipe, func(int) error {
		time.Sleep(5 * time.Millisecond)
		return nil
	})
	supplier := NewSupplier[int]("source", root, counterSupplier(50))

	pipeline, err := NewBuilder[int](root).Use(supplier).Use(consumer).Build()
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- pipeline.Run(context.Background()) }()

	time.Sleep(20 * time.Millisecond)
	bottlenecks := pipeline.Bottlenecks()

	pipeline.Stop()
	<-done

	for _, w := range bottlenecks {
		require.Equal(t, "slow", w.Name())
	}
}
