package nats

import (
	"context"
	"testing"
	"time"

	"qbwc-sync-be/pkg/events"

	"github.com/stretchr/testify/assert"
)

func TestNilPublisherDropsEvents(t *testing.T) {
	var p *Publisher
	err := p.Publish(context.Background(), events.SyncSessionEvent{Type: events.TypeSyncSessionFinished, At: time.Now()})
	assert.NoError(t, err)
	p.Close()
}

func TestSubject(t *testing.T) {
	assert.Equal(t, "sync.SYNC_SESSION_FINISHED", Subject(events.TypeSyncSessionFinished))
}
