package health

import (
	"context"
	"sync"

	"github.com/LaughingJackalope/agentrouter/internal/observe"
	"github.com/LaughingJackalope/agentrouter/internal/service/mapping"
)

var _ mutator = &mutatorMock{}

type mutatorMock struct {
	MutateFunc func(ctx context.Context, address string, updatedBy *string, fn mapping.MutateFunc) (*mapping.Mutation, error)

	calls struct {
		Mutate []struct {
			Address   string
			UpdatedBy *string
		}
	}
	lockMutate sync.RWMutex
}

func (mock *mutatorMock) Mutate(ctx context.Context, address string, updatedBy *string, fn mapping.MutateFunc) (*mapping.Mutation, error) {
	if mock.MutateFunc == nil {
		panic("mutatorMock.MutateFunc: method is nil but mutator.Mutate was just called")
	}
	mock.lockMutate.Lock()
	mock.calls.Mutate = append(mock.calls.Mutate, struct {
		Address   string
		UpdatedBy *string
	}{Address: address, UpdatedBy: updatedBy})
	mock.lockMutate.Unlock()
	return mock.MutateFunc(ctx, address, updatedBy, fn)
}

func (mock *mutatorMock) MutateCalls() []struct {
	Address   string
	UpdatedBy *string
} {
	mock.lockMutate.RLock()
	defer mock.lockMutate.RUnlock()
	return mock.calls.Mutate
}

var _ observer = &observerMock{}

type observerMock struct {
	HealthReportedFunc func(ctx context.Context, ev observe.HealthEvent)

	calls struct {
		HealthReported []observe.HealthEvent
	}
	lockHealthReported sync.RWMutex
}

func (mock *observerMock) HealthReported(ctx context.Context, ev observe.HealthEvent) {
	mock.lockHealthReported.Lock()
	mock.calls.HealthReported = append(mock.calls.HealthReported, ev)
	mock.lockHealthReported.Unlock()
	if mock.HealthReportedFunc != nil {
		mock.HealthReportedFunc(ctx, ev)
	}
}

func (mock *observerMock) HealthReportedCalls() []observe.HealthEvent {
	mock.lockHealthReported.RLock()
	defer mock.lockHealthReported.RUnlock()
	return mock.calls.HealthReported
}
