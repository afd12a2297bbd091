package provisioning

import (
	"context"
	"sync"

	"github.com/LaughingJackalope/agentrouter/internal/domain"
)

var _ busAdmin = &busAdminMock{}

type busAdminMock struct {
	EnsureTopicFunc        func(ctx context.Context, name string) error
	EnsureSubscriptionFunc func(ctx context.Context, spec domain.SubscriptionSpec) error

	calls struct {
		EnsureTopic []struct {
			Name string
		}
		EnsureSubscription []struct {
			Spec domain.SubscriptionSpec
		}
	}
	lockEnsureTopic        sync.RWMutex
	lockEnsureSubscription sync.RWMutex
}

func (mock *busAdminMock) EnsureTopic(ctx context.Context, name string) error {
	if mock.EnsureTopicFunc == nil {
		panic("busAdminMock.EnsureTopicFunc: method is nil but busAdmin.EnsureTopic was just called")
	}
	mock.lockEnsureTopic.Lock()
	mock.calls.EnsureTopic = append(mock.calls.EnsureTopic, struct{ Name string }{Name: name})
	mock.lockEnsureTopic.Unlock()
	return mock.EnsureTopicFunc(ctx, name)
}

func (mock *busAdminMock) EnsureTopicCalls() []struct{ Name string } {
	mock.lockEnsureTopic.RLock()
	defer mock.lockEnsureTopic.RUnlock()
	return mock.calls.EnsureTopic
}

func (mock *busAdminMock) EnsureSubscription(ctx context.Context, spec domain.SubscriptionSpec) error {
	if mock.EnsureSubscriptionFunc == nil {
		panic("busAdminMock.EnsureSubscriptionFunc: method is nil but busAdmin.EnsureSubscription was just called")
	}
	mock.lockEnsureSubscription.Lock()
	mock.calls.EnsureSubscription = append(mock.calls.EnsureSubscription, struct{ Spec domain.SubscriptionSpec }{Spec: spec})
	mock.lockEnsureSubscription.Unlock()
	return mock.EnsureSubscriptionFunc(ctx, spec)
}

func (mock *busAdminMock) EnsureSubscriptionCalls() []struct{ Spec domain.SubscriptionSpec } {
	mock.lockEnsureSubscription.RLock()
	defer mock.lockEnsureSubscription.RUnlock()
	return mock.calls.EnsureSubscription
}
