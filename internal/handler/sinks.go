package handler

import (
	"context"
	"time"

	"git.home.luguber.info/inful/imageforge/internal/classify"
	"git.home.luguber.info/inful/imageforge/internal/errors"
	"git.home.luguber.info/inful/imageforge/internal/events"
	"git.home.luguber.info/inful/imageforge/internal/eventstore"
)

const sinkTimeout = 5 * time.Second

// StoreSink persists handled failures to an event store.
type StoreSink struct {
	store     eventstore.Store
	sessionID string
}

// NewStoreSink wraps a store under a fixed session id.
func NewStoreSink(store eventstore.Store, sessionID string) *StoreSink {
	return &StoreSink{store: store, sessionID: sessionID}
}

func (s *StoreSink) Consume(rec *errors.ErrorRecord, _ classify.Decision) error {
	ctx, cancel := context.WithTimeout(context.Background(), sinkTimeout)
	defer cancel()
	return s.store.Append(ctx, s.sessionID, rec)
}

// PublishSink forwards handled failures to an event publisher.
type PublishSink struct {
	pub       events.Publisher
	sessionID string
}

// NewPublishSink wraps a publisher under a fixed session id.
func NewPublishSink(pub events.Publisher, sessionID string) *PublishSink {
	return &PublishSink{pub: pub, sessionID: sessionID}
}

func (s *PublishSink) Consume(rec *errors.ErrorRecord, d classify.Decision) error {
	s.pub.PublishError(s.sessionID, rec, d)
	return nil
}
