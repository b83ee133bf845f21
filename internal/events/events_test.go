package events

import (
	"bytes"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBus_SubscribeAndEmit(t *testing.T) {
	bus := NewBus()

	var got []*Event
	bus.Subscribe(DatasetReloaded, func(e *Event) { got = append(got, e) })
	bus.Subscribe(BacktestComputed, func(e *Event) { t.Fatal("wrong type delivered") })

	bus.Emit(DatasetReloaded, "dataset", map[string]interface{}{"rows": 10})

	require.Len(t, got, 1)
	assert.Equal(t, DatasetReloaded, got[0].Type)
	assert.Equal(t, "dataset", got[0].Module)
	assert.Equal(t, 10, got[0].Data["rows"])
	assert.False(t, got[0].Timestamp.IsZero())
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := NewBus()

	calls := 0
	id := bus.Subscribe(CachePurged, func(*Event) { calls++ })
	assert.Equal(t, 1, bus.SubscriberCount(CachePurged))

	bus.Unsubscribe(CachePurged, id)
	bus.Emit(CachePurged, "backtest", nil)

	assert.Equal(t, 0, calls)
	assert.Equal(t, 0, bus.SubscriberCount(CachePurged))
}

func TestBus_ConcurrentEmit(t *testing.T) {
	bus := NewBus()

	var mu sync.Mutex
	count := 0
	bus.Subscribe(BacktestComputed, func(*Event) {
		mu.Lock()
		count++
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			bus.Emit(BacktestComputed, "backtest", nil)
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, count)
}

func TestManager_EmitTyped(t *testing.T) {
	bus := NewBus()
	var buf bytes.Buffer
	m := NewManager(bus, zerolog.New(&buf))

	var got *Event
	bus.Subscribe(DatasetReloaded, func(e *Event) { got = e })

	m.EmitTyped("dataset", &DatasetReloadedData{
		SnapshotID:  "abc",
		Fingerprint: "f00",
		Rows:        42,
		Changed:     true,
	})

	require.NotNil(t, got)
	assert.Equal(t, "abc", got.Data["snapshot_id"])
	assert.Equal(t, float64(42), got.Data["rows"])
	assert.Equal(t, true, got.Data["changed"])
	assert.Contains(t, buf.String(), "DATASET_RELOADED")
	assert.Same(t, bus, m.Bus())
}

func TestManager_EmitError(t *testing.T) {
	bus := NewBus()
	m := NewManager(bus, zerolog.Nop())

	var got *Event
	bus.Subscribe(ErrorOccurred, func(e *Event) { got = e })

	m.EmitError("dataset", errors.New("boom"), map[string]interface{}{"source": "x.csv"})

	require.NotNil(t, got)
	assert.Equal(t, "boom", got.Data["error"])
	assert.Equal(t, map[string]interface{}{"source": "x.csv"}, got.Data["context"])
}

func TestEventData_Types(t *testing.T) {
	tests := []struct {
		data     EventData
		expected EventType
	}{
		{&DatasetReloadedData{}, DatasetReloaded},
		{&DatasetLoadFailedData{}, DatasetLoadFailed},
		{&BacktestComputedData{}, BacktestComputed},
		{&CachePurgedData{}, CachePurged},
		{&ErrorEventData{}, ErrorOccurred},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, tt.data.EventType())
	}
	assert.Len(t, AllTypes(), len(tests))
}
