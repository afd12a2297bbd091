package ingest

import (
	"context"
	"sync"
	"time"

	"github.com/LaughingJackalope/agentrouter/internal/domain"
	"github.com/LaughingJackalope/agentrouter/internal/observe"
)

var _ mappingLookup = &mappingLookupMock{}

type mappingLookupMock struct {
	GetFunc func(ctx context.Context, address string) (*domain.AgentMapping, error)

	calls struct {
		Get []struct {
			Address string
		}
	}
	lockGet sync.RWMutex
}

func (mock *mappingLookupMock) Get(ctx context.Context, address string) (*domain.AgentMapping, error) {
	if mock.GetFunc == nil {
		panic("mappingLookupMock.GetFunc: method is nil but mappingLookup.Get was just called")
	}
	mock.lockGet.Lock()
	mock.calls.Get = append(mock.calls.Get, struct{ Address string }{Address: address})
	mock.lockGet.Unlock()
	return mock.GetFunc(ctx, address)
}

func (mock *mappingLookupMock) GetCalls() []struct{ Address string } {
	mock.lockGet.RLock()
	defer mock.lockGet.RUnlock()
	return mock.calls.Get
}

var _ publisher = &publisherMock{}

type publisherMock struct {
	PublishFunc func(ctx context.Context, inbox string, env domain.Envelope) (string, error)

	calls struct {
		Publish []struct {
			Inbox string
			Env   domain.Envelope
		}
	}
	lockPublish sync.RWMutex
}

func (mock *publisherMock) Publish(ctx context.Context, inbox string, env domain.Envelope) (string, error) {
	if mock.PublishFunc == nil {
		panic("publisherMock.PublishFunc: method is nil but publisher.Publish was just called")
	}
	mock.lockPublish.Lock()
	mock.calls.Publish = append(mock.calls.Publish, struct {
		Inbox string
		Env   domain.Envelope
	}{Inbox: inbox, Env: env})
	mock.lockPublish.Unlock()
	return mock.PublishFunc(ctx, inbox, env)
}

func (mock *publisherMock) PublishCalls() []struct {
	Inbox string
	Env   domain.Envelope
} {
	mock.lockPublish.RLock()
	defer mock.lockPublish.RUnlock()
	return mock.calls.Publish
}

var _ deduper = &deduperMock{}

type deduperMock struct {
	ReserveFunc func(ctx context.Context, key, messageID string, ttl time.Duration) (string, bool, error)
	ReleaseFunc func(ctx context.Context, key, messageID string) error

	calls struct {
		Reserve []struct {
			Key       string
			MessageID string
			TTL       time.Duration
		}
		Release []struct {
			Key       string
			MessageID string
		}
	}
	lockReserve sync.RWMutex
	lockRelease sync.RWMutex
}

func (mock *deduperMock) Reserve(ctx context.Context, key, messageID string, ttl time.Duration) (string, bool, error) {
	if mock.ReserveFunc == nil {
		panic("deduperMock.ReserveFunc: method is nil but deduper.Reserve was just called")
	}
	mock.lockReserve.Lock()
	mock.calls.Reserve = append(mock.calls.Reserve, struct {
		Key       string
		MessageID string
		TTL       time.Duration
	}{Key: key, MessageID: messageID, TTL: ttl})
	mock.lockReserve.Unlock()
	return mock.ReserveFunc(ctx, key, messageID, ttl)
}

func (mock *deduperMock) ReserveCalls() []struct {
	Key       string
	MessageID string
	TTL       time.Duration
} {
	mock.lockReserve.RLock()
	defer mock.lockReserve.RUnlock()
	return mock.calls.Reserve
}

func (mock *deduperMock) Release(ctx context.Context, key, messageID string) error {
	if mock.ReleaseFunc == nil {
		panic("deduperMock.ReleaseFunc: method is nil but deduper.Release was just called")
	}
	mock.lockRelease.Lock()
	mock.calls.Release = append(mock.calls.Release, struct {
		Key       string
		MessageID string
	}{Key: key, MessageID: messageID})
	mock.lockRelease.Unlock()
	return mock.ReleaseFunc(ctx, key, messageID)
}

func (mock *deduperMock) ReleaseCalls() []struct {
	Key       string
	MessageID string
} {
	mock.lockRelease.RLock()
	defer mock.lockRelease.RUnlock()
	return mock.calls.Release
}

var _ observer = &observerMock{}

type observerMock struct {
	RouteCompletedFunc func(ctx context.Context, ev observe.RouteEvent)

	calls struct {
		RouteCompleted []observe.RouteEvent
	}
	lockRouteCompleted sync.RWMutex
}

func (mock *observerMock) RouteCompleted(ctx context.Context, ev observe.RouteEvent) {
	mock.lockRouteCompleted.Lock()
	mock.calls.RouteCompleted = append(mock.calls.RouteCompleted, ev)
	mock.lockRouteCompleted.Unlock()
	if mock.RouteCompletedFunc != nil {
		mock.RouteCompletedFunc(ctx, ev)
	}
}

func (mock *observerMock) RouteCompletedCalls() []observe.RouteEvent {
	mock.lockRouteCompleted.RLock()
	defer mock.lockRouteCompleted.RUnlock()
	return mock.calls.RouteCompleted
}
