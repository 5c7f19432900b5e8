package events

import (
	"context"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/bryanwahyu/healthsync/internal/domain/analysis"
)

func TestBusRoutesByKind(t *testing.T) {
	bus := NewBus(zerolog.Nop())
	var completed, all []string

	bus.Subscribe(func(_ context.Context, e analysis.Event) { completed = append(completed, string(e.RecordID)) }, analysis.EventAnalysisCompleted)
	bus.Subscribe(func(_ context.Context, e analysis.Event) { all = append(all, e.Kind) })

	bus.Publish(context.Background(), analysis.Event{Kind: analysis.EventAnalysisCompleted, RecordID: "r1"})
	bus.Publish(context.Background(), analysis.Event{Kind: analysis.EventMedicationsUpdated})

	assert.Equal(t, []string{"r1"}, completed)
	assert.Equal(t, []string{analysis.EventAnalysisCompleted, analysis.EventMedicationsUpdated}, all)
}

func TestBusSurvivesPanickingHandler(t *testing.T) {
	bus := NewBus(zerolog.Nop())
	called := false

	bus.Subscribe(func(context.Context, analysis.Event) { panic("boom") })
	bus.Subscribe(func(context.Context, analysis.Event) { called = true })

	assert.NotPanics(t, func() {
		bus.Publish(context.Background(), analysis.Event{Kind: analysis.EventAnalysisFailed})
	})
	assert.True(t, called)
}

func TestBusConcurrentPublish(t *testing.T) {
	bus := NewBus(zerolog.Nop())
	var mu sync.Mutex
	n := 0
	bus.Subscribe(func(context.Context, analysis.Event) {
		mu.Lock()
		n++
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			bus.Publish(context.Background(), analysis.Event{Kind: analysis.EventAnalysisCompleted})
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, n)
}
