// test/mock/ledger.go
package mock

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/evspresso/walter/model"
)

// MockLedger is a mock implementation of service.Ledger
type MockLedger struct {
	mock.Mock
}

func (m *MockLedger) HasConsumed(ctx context.Context, discordID string) (bool, error) {
	args := m.Called(ctx, discordID)
	return args.Bool(0), args.Error(1)
}

func (m *MockLedger) IsGranted(ctx context.Context, playerName string) (bool, error) {
	args := m.Called(ctx, playerName)
	return args.Bool(0), args.Error(1)
}

func (m *MockLedger) RecordResolution(ctx context.Context, record model.ConsumptionRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockLedger) ListConsumptions(ctx context.Context, limit, offset int) ([]*model.ConsumptionRecord, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.ConsumptionRecord), args.Error(1)
}
