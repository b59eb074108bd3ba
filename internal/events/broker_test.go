package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBroker_TypedAndWildcard(t *testing.T) {
	b := NewBroker()
	tabs := b.Subscribe(TabChangedEvent)
	all := b.Subscribe()

	b.Publish(Event{Type: TabChangedEvent, Payload: TabPayload{Name: "Dashboard"}})
	b.Publish(Event{Type: StatusMessageEvent, Payload: StatusMessagePayload{Message: "hi"}})

	require.Len(t, tabs, 1)
	ev := <-tabs
	assert.Equal(t, "Dashboard", ev.Payload.(TabPayload).Name)

	require.Len(t, all, 2)
	assert.Equal(t, TabChangedEvent, (<-all).Type)
	assert.Equal(t, StatusMessageEvent, (<-all).Type)
}

func TestBroker_FullChannelDrops(t *testing.T) {
	b := NewBrokerWithBuffer(1)
	ch := b.Subscribe(AnalysisProgressEvent)

	b.Publish(Event{Type: AnalysisProgressEvent, Payload: 1})
	b.Publish(Event{Type: AnalysisProgressEvent, Payload: 2})

	require.Len(t, ch, 1)
	assert.Equal(t, 1, (<-ch).Payload)
}

func TestBroker_UnsubscribeMultipleTypes(t *testing.T) {
	b := NewBroker()
	ch := b.Subscribe(AnalysisStartedEvent, AnalysisCompletedEvent)

	assert.NotPanics(t, func() { b.Unsubscribe(ch) })
	assert.NotPanics(t, func() { b.Unsubscribe(ch) })

	_, open := <-ch
	assert.False(t, open)

	assert.NotPanics(t, func() {
		b.Publish(Event{Type: AnalysisStartedEvent})
	})
}

func TestBroker_Clear(t *testing.T) {
	b := NewBroker()
	a := b.Subscribe(TabChangedEvent, TabRemovedEvent)
	c := b.Subscribe()

	b.Clear()

	_, open := <-a
	assert.False(t, open)
	_, open = <-c
	assert.False(t, open)
}
