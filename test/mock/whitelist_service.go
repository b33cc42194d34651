// test/mock/whitelist_service.go
package mock

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/evspresso/walter/model"
	"github.com/evspresso/walter/service"
)

// MockWhitelistService is a mock implementation of service.IWhitelistService
type MockWhitelistService struct {
	mock.Mock
}

func (m *MockWhitelistService) AddToWhitelist(ctx context.Context, req model.GrantRequest) (service.Status, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(service.Status), args.Error(1)
}

func (m *MockWhitelistService) ListTokens(ctx context.Context, limit, offset int) ([]*model.ConsumptionRecord, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.ConsumptionRecord), args.Error(1)
}
