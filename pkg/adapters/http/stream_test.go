package http

import (
	"testing"

	"github.com/aretw0/casenav/internal/logging"
	"github.com/aretw0/casenav/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStreamManager_Publish(t *testing.T) {
	sm := NewStreamManager(logging.NewNop())
	feed, cancel := sm.Subscribe("s1")
	other, cancelOther := sm.Subscribe("s2")
	defer cancelOther()

	sm.Publish(&domain.Response{SessionID: "s1", Type: domain.ScreenMenu, Title: "Root"})

	require.Len(t, feed, 1)
	frame := <-feed
	assert.Equal(t, "menu", frame.Event)
	assert.Contains(t, string(frame.Data), `"title":"Root"`)
	assert.Empty(t, other)

	cancel()
	cancel()
	assert.Equal(t, 0, sm.Subscribers("s1"))
	assert.Equal(t, 1, sm.Subscribers("s2"))
}

func TestStreamManager_DropsWhenFull(t *testing.T) {
	sm := NewStreamManager(logging.NewNop())
	feed, cancel := sm.Subscribe("s1")
	defer cancel()

	for i := 0; i < feedBuffer+3; i++ {
		sm.Publish(&domain.Response{SessionID: "s1", Type: domain.ScreenEntity})
	}
	sm.Publish(nil)

	assert.Len(t, feed, feedBuffer)
}
