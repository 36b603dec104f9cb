package realtime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/lifeboard/internal/testutil"
)

func receive(t *testing.T, c *Client) []byte {
	t.Helper()
	select {
	case msg, ok := <-c.Messages():
		require.True(t, ok, "mailbox closed")
		return msg
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for message")
		return nil
	}
}

func TestHubBroadcastReachesRegisteredClients(t *testing.T) {
	m := NewHubManager(testutil.NopLogger())
	hub := m.GetOrCreateHub("game-1")
	defer m.RemoveHub("game-1")

	a := NewClient("a")
	b := NewClient("b")
	require.True(t, hub.Register(a))
	require.True(t, hub.Register(b))

	hub.Broadcast([]byte("one"))

	assert.Equal(t, "one", string(receive(t, a)))
	assert.Equal(t, "one", string(receive(t, b)))
	assert.Equal(t, 2, hub.ClientCount())
}

func TestHubUnregisterClosesMailbox(t *testing.T) {
	m := NewHubManager(testutil.NopLogger())
	hub := m.GetOrCreateHub("game-1")
	defer m.RemoveHub("game-1")

	c := NewClient("a")
	require.True(t, hub.Register(c))
	hub.Unregister(c)

	select {
	case _, ok := <-c.Messages():
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("mailbox not closed")
	}
}

func TestHubCloseClosesEveryMailbox(t *testing.T) {
	m := NewHubManager(testutil.NopLogger())
	hub := m.GetOrCreateHub("game-1")
	c := NewClient("a")
	require.True(t, hub.Register(c))

	m.RemoveHub("game-1")

	select {
	case _, ok := <-c.Messages():
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("mailbox not closed")
	}
	assert.False(t, hub.Register(NewClient("late")))
	assert.Nil(t, m.GetHub("game-1"))
}

func TestClientOfferKeepsNewest(t *testing.T) {
	c := NewClient("slow")
	for i := 0; i < sendBufferSize; i++ {
		assert.False(t, c.Offer([]byte("old")))
	}
	assert.True(t, c.Offer([]byte("newest")))

	var last []byte
	for i := 0; i < sendBufferSize; i++ {
		last = <-c.Messages()
	}
	assert.Equal(t, "newest", string(last))
}

func TestLeaveRemovesHubWithLastClient(t *testing.T) {
	m := NewHubManager(testutil.NopLogger())
	a := NewClient("a")
	b := NewClient("b")
	hub := m.Join("game-1", a)
	require.Same(t, hub, m.Join("game-1", b))
	assert.Equal(t, 2, hub.ClientCount())

	m.Leave(hub, a)
	assert.Same(t, hub, m.GetHub("game-1"))
	assert.Equal(t, 1, hub.ClientCount())

	m.Leave(hub, b)
	assert.Nil(t, m.GetHub("game-1"))
	assert.Equal(t, 0, m.HubCount())
	assert.False(t, hub.Register(NewClient("late")))
}

func TestJoinAfterLeaveStartsFreshHub(t *testing.T) {
	m := NewHubManager(testutil.NopLogger())
	a := NewClient("a")
	old := m.Join("game-1", a)
	m.Leave(old, a)

	b := NewClient("b")
	hub := m.Join("game-1", b)
	defer m.RemoveHub("game-1")

	assert.NotSame(t, old, hub)
	hub.Broadcast([]byte("fresh"))
	assert.Equal(t, "fresh", string(receive(t, b)))
}

func TestLeaveAfterRemoveIsHarmless(t *testing.T) {
	m := NewHubManager(testutil.NopLogger())
	a := NewClient("a")
	hub := m.Join("game-1", a)
	m.RemoveHub("game-1")

	m.Leave(hub, a)

	assert.Equal(t, 0, m.HubCount())
}
