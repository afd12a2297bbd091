package rest

import (
	"context"
	"sync"

	"github.com/LaughingJackalope/agentrouter/internal/domain"
	"github.com/LaughingJackalope/agentrouter/internal/naming"
	"github.com/LaughingJackalope/agentrouter/internal/service/health"
	"github.com/LaughingJackalope/agentrouter/internal/service/mapping"
)

// ---------------------------------------------------------------------------
// messageRouterMock
// ---------------------------------------------------------------------------

var _ messageRouter = &messageRouterMock{}

type messageRouterMock struct {
	RouteFunc  func(ctx context.Context, msg domain.InboundMessage) domain.Outcome
	RejectFunc func(ctx context.Context, cause error) domain.Outcome

	calls struct {
		Route []struct {
			Msg domain.InboundMessage
		}
		Reject []struct {
			Cause error
		}
	}
	lockRoute  sync.RWMutex
	lockReject sync.RWMutex
}

func (mock *messageRouterMock) Route(ctx context.Context, msg domain.InboundMessage) domain.Outcome {
	if mock.RouteFunc == nil {
		panic("messageRouterMock.RouteFunc: method is nil but messageRouter.Route was just called")
	}
	mock.lockRoute.Lock()
	mock.calls.Route = append(mock.calls.Route, struct{ Msg domain.InboundMessage }{Msg: msg})
	mock.lockRoute.Unlock()
	return mock.RouteFunc(ctx, msg)
}

func (mock *messageRouterMock) RouteCalls() []struct{ Msg domain.InboundMessage } {
	mock.lockRoute.RLock()
	defer mock.lockRoute.RUnlock()
	return mock.calls.Route
}

func (mock *messageRouterMock) Reject(ctx context.Context, cause error) domain.Outcome {
	if mock.RejectFunc == nil {
		panic("messageRouterMock.RejectFunc: method is nil but messageRouter.Reject was just called")
	}
	mock.lockReject.Lock()
	mock.calls.Reject = append(mock.calls.Reject, struct{ Cause error }{Cause: cause})
	mock.lockReject.Unlock()
	return mock.RejectFunc(ctx, cause)
}

func (mock *messageRouterMock) RejectCalls() []struct{ Cause error } {
	mock.lockReject.RLock()
	defer mock.lockReject.RUnlock()
	return mock.calls.Reject
}

// ---------------------------------------------------------------------------
// mappingServiceMock
// ---------------------------------------------------------------------------

var _ mappingService = &mappingServiceMock{}

type mappingServiceMock struct {
	RegisterFunc  func(ctx context.Context, input mapping.RegisterInput) (*domain.AgentMapping, error)
	GetFunc       func(ctx context.Context, address string) (*domain.AgentMapping, error)
	ListFunc      func(ctx context.Context, input mapping.ListInput) ([]*domain.AgentMapping, int, error)
	UpdateFunc    func(ctx context.Context, input mapping.UpdateInput) (*domain.AgentMapping, error)
	DeleteFunc    func(ctx context.Context, address string) error
	ProvisionFunc func(ctx context.Context, address string) (naming.Names, error)

	calls struct {
		Register []struct {
			Input mapping.RegisterInput
		}
		Get []struct {
			Address string
		}
		List []struct {
			Input mapping.ListInput
		}
		Update []struct {
			Input mapping.UpdateInput
		}
		Delete []struct {
			Address string
		}
		Provision []struct {
			Address string
		}
	}
	lockRegister  sync.RWMutex
	lockGet       sync.RWMutex
	lockList      sync.RWMutex
	lockUpdate    sync.RWMutex
	lockDelete    sync.RWMutex
	lockProvision sync.RWMutex
}

func (mock *mappingServiceMock) Register(ctx context.Context, input mapping.RegisterInput) (*domain.AgentMapping, error) {
	if mock.RegisterFunc == nil {
		panic("mappingServiceMock.RegisterFunc: method is nil but mappingService.Register was just called")
	}
	mock.lockRegister.Lock()
	mock.calls.Register = append(mock.calls.Register, struct{ Input mapping.RegisterInput }{Input: input})
	mock.lockRegister.Unlock()
	return mock.RegisterFunc(ctx, input)
}

func (mock *mappingServiceMock) RegisterCalls() []struct{ Input mapping.RegisterInput } {
	mock.lockRegister.RLock()
	defer mock.lockRegister.RUnlock()
	return mock.calls.Register
}

func (mock *mappingServiceMock) Get(ctx context.Context, address string) (*domain.AgentMapping, error) {
	if mock.GetFunc == nil {
		panic("mappingServiceMock.GetFunc: method is nil but mappingService.Get was just called")
	}
	mock.lockGet.Lock()
	mock.calls.Get = append(mock.calls.Get, struct{ Address string }{Address: address})
	mock.lockGet.Unlock()
	return mock.GetFunc(ctx, address)
}

func (mock *mappingServiceMock) GetCalls() []struct{ Address string } {
	mock.lockGet.RLock()
	defer mock.lockGet.RUnlock()
	return mock.calls.Get
}

func (mock *mappingServiceMock) List(ctx context.Context, input mapping.ListInput) ([]*domain.AgentMapping, int, error) {
	if mock.ListFunc == nil {
		panic("mappingServiceMock.ListFunc: method is nil but mappingService.List was just called")
	}
	mock.lockList.Lock()
	mock.calls.List = append(mock.calls.List, struct{ Input mapping.ListInput }{Input: input})
	mock.lockList.Unlock()
	return mock.ListFunc(ctx, input)
}

func (mock *mappingServiceMock) ListCalls() []struct{ Input mapping.ListInput } {
	mock.lockList.RLock()
	defer mock.lockList.RUnlock()
	return mock.calls.List
}

func (mock *mappingServiceMock) Update(ctx context.Context, input mapping.UpdateInput) (*domain.AgentMapping, error) {
	if mock.UpdateFunc == nil {
		panic("mappingServiceMock.UpdateFunc: method is nil but mappingService.Update was just called")
	}
	mock.lockUpdate.Lock()
	mock.calls.Update = append(mock.calls.Update, struct{ Input mapping.UpdateInput }{Input: input})
	mock.lockUpdate.Unlock()
	return mock.UpdateFunc(ctx, input)
}

func (mock *mappingServiceMock) UpdateCalls() []struct{ Input mapping.UpdateInput } {
	mock.lockUpdate.RLock()
	defer mock.lockUpdate.RUnlock()
	return mock.calls.Update
}

func (mock *mappingServiceMock) Delete(ctx context.Context, address string) error {
	if mock.DeleteFunc == nil {
		panic("mappingServiceMock.DeleteFunc: method is nil but mappingService.Delete was just called")
	}
	mock.lockDelete.Lock()
	mock.calls.Delete = append(mock.calls.Delete, struct{ Address string }{Address: address})
	mock.lockDelete.Unlock()
	return mock.DeleteFunc(ctx, address)
}

func (mock *mappingServiceMock) DeleteCalls() []struct{ Address string } {
	mock.lockDelete.RLock()
	defer mock.lockDelete.RUnlock()
	return mock.calls.Delete
}

func (mock *mappingServiceMock) Provision(ctx context.Context, address string) (naming.Names, error) {
	if mock.ProvisionFunc == nil {
		panic("mappingServiceMock.ProvisionFunc: method is nil but mappingService.Provision was just called")
	}
	mock.lockProvision.Lock()
	mock.calls.Provision = append(mock.calls.Provision, struct{ Address string }{Address: address})
	mock.lockProvision.Unlock()
	return mock.ProvisionFunc(ctx, address)
}

func (mock *mappingServiceMock) ProvisionCalls() []struct{ Address string } {
	mock.lockProvision.RLock()
	defer mock.lockProvision.RUnlock()
	return mock.calls.Provision
}

// ---------------------------------------------------------------------------
// healthReconcilerMock
// ---------------------------------------------------------------------------

var _ healthReconciler = &healthReconcilerMock{}

type healthReconcilerMock struct {
	ReportFunc func(ctx context.Context, input health.ReportInput) (*health.Result, error)

	calls struct {
		Report []struct {
			Input health.ReportInput
		}
	}
	lockReport sync.RWMutex
}

func (mock *healthReconcilerMock) Report(ctx context.Context, input health.ReportInput) (*health.Result, error) {
	if mock.ReportFunc == nil {
		panic("healthReconcilerMock.ReportFunc: method is nil but healthReconciler.Report was just called")
	}
	mock.lockReport.Lock()
	mock.calls.Report = append(mock.calls.Report, struct{ Input health.ReportInput }{Input: input})
	mock.lockReport.Unlock()
	return mock.ReportFunc(ctx, input)
}

func (mock *healthReconcilerMock) ReportCalls() []struct{ Input health.ReportInput } {
	mock.lockReport.RLock()
	defer mock.lockReport.RUnlock()
	return mock.calls.Report
}
