package mapping

import (
	"context"
	"sync"
	"time"

	"github.com/LaughingJackalope/agentrouter/internal/domain"
	"github.com/LaughingJackalope/agentrouter/internal/naming"
)

var _ mappingRepo = &mappingRepoMock{}

type mappingRepoMock struct {
	CreateFunc                func(ctx context.Context, m *domain.AgentMapping) (*domain.AgentMapping, error)
	GetByAddressFunc          func(ctx context.Context, address string) (*domain.AgentMapping, error)
	GetByAddressForUpdateFunc func(ctx context.Context, address string) (*domain.AgentMapping, error)
	UpdateFunc                func(ctx context.Context, address string, patch domain.MappingPatch, updatedAt time.Time, updatedBy *string) (*domain.AgentMapping, error)
	DeleteFunc                func(ctx context.Context, address string) error
	ListFunc                  func(ctx context.Context, filter domain.MappingFilter) ([]*domain.AgentMapping, int, error)

	calls struct {
		Create []struct {
			M *domain.AgentMapping
		}
		GetByAddress []struct {
			Address string
		}
		GetByAddressForUpdate []struct {
			Address string
		}
		Update []struct {
			Address   string
			Patch     domain.MappingPatch
			UpdatedAt time.Time
			UpdatedBy *string
		}
		Delete []struct {
			Address string
		}
		List []struct {
			Filter domain.MappingFilter
		}
	}
	lockCreate                sync.RWMutex
	lockGetByAddress          sync.RWMutex
	lockGetByAddressForUpdate sync.RWMutex
	lockUpdate                sync.RWMutex
	lockDelete                sync.RWMutex
	lockList                  sync.RWMutex
}

func (mock *mappingRepoMock) Create(ctx context.Context, m *domain.AgentMapping) (*domain.AgentMapping, error) {
	if mock.CreateFunc == nil {
		panic("mappingRepoMock.CreateFunc: method is nil but mappingRepo.Create was just called")
	}
	mock.lockCreate.Lock()
	mock.calls.Create = append(mock.calls.Create, struct{ M *domain.AgentMapping }{M: m})
	mock.lockCreate.Unlock()
	return mock.CreateFunc(ctx, m)
}

func (mock *mappingRepoMock) CreateCalls() []struct{ M *domain.AgentMapping } {
	mock.lockCreate.RLock()
	defer mock.lockCreate.RUnlock()
	return mock.calls.Create
}

func (mock *mappingRepoMock) GetByAddress(ctx context.Context, address string) (*domain.AgentMapping, error) {
	if mock.GetByAddressFunc == nil {
		panic("mappingRepoMock.GetByAddressFunc: method is nil but mappingRepo.GetByAddress was just called")
	}
	mock.lockGetByAddress.Lock()
	mock.calls.GetByAddress = append(mock.calls.GetByAddress, struct{ Address string }{Address: address})
	mock.lockGetByAddress.Unlock()
	return mock.GetByAddressFunc(ctx, address)
}

func (mock *mappingRepoMock) GetByAddressCalls() []struct{ Address string } {
	mock.lockGetByAddress.RLock()
	defer mock.lockGetByAddress.RUnlock()
	return mock.calls.GetByAddress
}

func (mock *mappingRepoMock) GetByAddressForUpdate(ctx context.Context, address string) (*domain.AgentMapping, error) {
	if mock.GetByAddressForUpdateFunc == nil {
		panic("mappingRepoMock.GetByAddressForUpdateFunc: method is nil but mappingRepo.GetByAddressForUpdate was just called")
	}
	mock.lockGetByAddressForUpdate.Lock()
	mock.calls.GetByAddressForUpdate = append(mock.calls.GetByAddressForUpdate, struct{ Address string }{Address: address})
	mock.lockGetByAddressForUpdate.Unlock()
	return mock.GetByAddressForUpdateFunc(ctx, address)
}

func (mock *mappingRepoMock) GetByAddressForUpdateCalls() []struct{ Address string } {
	mock.lockGetByAddressForUpdate.RLock()
	defer mock.lockGetByAddressForUpdate.RUnlock()
	return mock.calls.GetByAddressForUpdate
}

func (mock *mappingRepoMock) Update(ctx context.Context, address string, patch domain.MappingPatch, updatedAt time.Time, updatedBy *string) (*domain.AgentMapping, error) {
	if mock.UpdateFunc == nil {
		panic("mappingRepoMock.UpdateFunc: method is nil but mappingRepo.Update was just called")
	}
	callInfo := struct {
		Address   string
		Patch     domain.MappingPatch
		UpdatedAt time.Time
		UpdatedBy *string
	}{Address: address, Patch: patch, UpdatedAt: updatedAt, UpdatedBy: updatedBy}
	mock.lockUpdate.Lock()
	mock.calls.Update = append(mock.calls.Update, callInfo)
	mock.lockUpdate.Unlock()
	return mock.UpdateFunc(ctx, address, patch, updatedAt, updatedBy)
}

func (mock *mappingRepoMock) UpdateCalls() []struct {
	Address   string
	Patch     domain.MappingPatch
	UpdatedAt time.Time
	UpdatedBy *string
} {
	mock.lockUpdate.RLock()
	defer mock.lockUpdate.RUnlock()
	return mock.calls.Update
}

func (mock *mappingRepoMock) Delete(ctx context.Context, address string) error {
	if mock.DeleteFunc == nil {
		panic("mappingRepoMock.DeleteFunc: method is nil but mappingRepo.Delete was just called")
	}
	mock.lockDelete.Lock()
	mock.calls.Delete = append(mock.calls.Delete, struct{ Address string }{Address: address})
	mock.lockDelete.Unlock()
	return mock.DeleteFunc(ctx, address)
}

func (mock *mappingRepoMock) DeleteCalls() []struct{ Address string } {
	mock.lockDelete.RLock()
	defer mock.lockDelete.RUnlock()
	return mock.calls.Delete
}

func (mock *mappingRepoMock) List(ctx context.Context, filter domain.MappingFilter) ([]*domain.AgentMapping, int, error) {
	if mock.ListFunc == nil {
		panic("mappingRepoMock.ListFunc: method is nil but mappingRepo.List was just called")
	}
	mock.lockList.Lock()
	mock.calls.List = append(mock.calls.List, struct{ Filter domain.MappingFilter }{Filter: filter})
	mock.lockList.Unlock()
	return mock.ListFunc(ctx, filter)
}

func (mock *mappingRepoMock) ListCalls() []struct{ Filter domain.MappingFilter } {
	mock.lockList.RLock()
	defer mock.lockList.RUnlock()
	return mock.calls.List
}

var _ txManager = &txManagerMock{}

type txManagerMock struct {
	RunInTxFunc func(ctx context.Context, fn func(ctx context.Context) error) error

	calls struct {
		RunInTx []struct{}
	}
	lockRunInTx sync.RWMutex
}

func (mock *txManagerMock) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if mock.RunInTxFunc == nil {
		panic("txManagerMock.RunInTxFunc: method is nil but txManager.RunInTx was just called")
	}
	mock.lockRunInTx.Lock()
	mock.calls.RunInTx = append(mock.calls.RunInTx, struct{}{})
	mock.lockRunInTx.Unlock()
	return mock.RunInTxFunc(ctx, fn)
}

func (mock *txManagerMock) RunInTxCalls() []struct{} {
	mock.lockRunInTx.RLock()
	defer mock.lockRunInTx.RUnlock()
	return mock.calls.RunInTx
}

var _ provisioner = &provisionerMock{}

type provisionerMock struct {
	ProvisionFunc func(ctx context.Context, address string) (naming.Names, error)

	calls struct {
		Provision []struct {
			Address string
		}
	}
	lockProvision sync.RWMutex
}

func (mock *provisionerMock) Provision(ctx context.Context, address string) (naming.Names, error) {
	if mock.ProvisionFunc == nil {
		panic("provisionerMock.ProvisionFunc: method is nil but provisioner.Provision was just called")
	}
	mock.lockProvision.Lock()
	mock.calls.Provision = append(mock.calls.Provision, struct{ Address string }{Address: address})
	mock.lockProvision.Unlock()
	return mock.ProvisionFunc(ctx, address)
}

func (mock *provisionerMock) ProvisionCalls() []struct{ Address string } {
	mock.lockProvision.RLock()
	defer mock.lockProvision.RUnlock()
	return mock.calls.Provision
}
