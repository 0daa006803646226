package feed_test

import (
	"sync/atomic"

	"civicvoice/backend/internal/feed"
	"civicvoice/backend/internal/models"
)

type MockClient struct {
	id          string
	filter      feed.Filter
	RecvChannel chan models.ComplaintEvent
	closed      atomic.Bool
}

func newMockClient(id string, buffer int) *MockClient {
	return &MockClient{
		id:          id,
		RecvChannel: make(chan models.ComplaintEvent, buffer),
	}
}

func (c *MockClient) GetClientID() string                          { return c.id }
func (c *MockClient) Wants(ev models.ComplaintEvent) bool          { return c.filter.Match(ev) }
func (c *MockClient) GetSendChannel() chan<- models.ComplaintEvent { return c.RecvChannel }
func (c *MockClient) Run()                                         {}

func (c *MockClient) Close() {
	if c.closed.CompareAndSwap(false, true) {
		close(c.RecvChannel)
	}
}

func (c *MockClient) IsClosed() bool {
	return c.closed.Load()
}
