package websocket

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClose_Idempotent(t *testing.T) {
	cl := newTestClient("session-1", "")

	cl.Close()
	cl.Close()

	assert.True(t, cl.IsClosed())
}

// Close must never close the Message channel: a Send racing with Close would
// otherwise panic on a send to a closed channel.
func TestSend_ConcurrentWithClose(t *testing.T) {
	for i := 0; i < 1000; i++ {
		cl := newTestClient("session-1", "")

		var wg sync.WaitGroup
		wg.Add(2)

		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				cl.Send(&WSMessage{Event: ReceiveMessage})
			}
		}()
		go func() {
			defer wg.Done()
			cl.Close()
		}()

		wg.Wait()
	}
}

func TestSend_AfterClose(t *testing.T) {
	cl := newTestClient("session-1", "")
	cl.Close()

	cl.Send(&WSMessage{Event: ReceiveMessage})

	assert.Empty(t, cl.Message)
}
