package ws

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"hireflow/internal/usecase/batch"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T) *Hub {
	t.Helper()
	h := NewHub(nil)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go h.Run(ctx)
	return h
}

func waitClients(t *testing.T, h *Hub, userID uuid.UUID, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return h.ClientCount(userID) == n }, time.Second, 5*time.Millisecond)
}

func TestHub_NotifyOnlyReachesOwner(t *testing.T) {
	h := startHub(t)
	owner, other := uuid.New(), uuid.New()

	a := &Client{hub: h, userID: owner, send: make(chan []byte, 4)}
	b := &Client{hub: h, userID: other, send: make(chan []byte, 4)}
	h.Register(a)
	h.Register(b)
	waitClients(t, h, owner, 1)
	waitClients(t, h, other, 1)

	jobID := uuid.New()
	h.NotifyBatch(owner, batch.Progress{JobID: jobID, Status: batch.StatusRunning, Total: 3, Processed: 1})

	select {
	case msg := <-a.send:
		var evt BatchEvent
		require.NoError(t, json.Unmarshal(msg, &evt))
		assert.Equal(t, EventBatchProgress, evt.Type)
		assert.Equal(t, jobID, evt.Progress.JobID)
		assert.Equal(t, 1, evt.Progress.Processed)
	case <-time.After(time.Second):
		t.Fatal("owner did not receive progress")
	}

	select {
	case <-b.send:
		t.Fatal("other user received progress")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHub_UnregisterClosesSend(t *testing.T) {
	h := startHub(t)
	userID := uuid.New()
	c := &Client{hub: h, userID: userID, send: make(chan []byte, 1)}

	h.Register(c)
	waitClients(t, h, userID, 1)
	h.Unregister(c)
	waitClients(t, h, userID, 0)

	_, ok := <-c.send
	assert.False(t, ok)
}

func TestHub_DropsSlowClient(t *testing.T) {
	h := startHub(t)
	userID := uuid.New()
	c := &Client{hub: h, userID: userID, send: make(chan []byte)}

	h.Register(c)
	waitClients(t, h, userID, 1)
	h.SendToUser(userID, []byte(`{}`))
	waitClients(t, h, userID, 0)
}
