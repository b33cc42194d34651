// test/mock/access.go
package mock

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/evspresso/walter/rcon"
)

// MockAccessChannel is a mock implementation of service.AccessChannel
type MockAccessChannel struct {
	mock.Mock
}

func (m *MockAccessChannel) IssueGrant(ctx context.Context, playerName string) (rcon.GrantOutcome, error) {
	args := m.Called(ctx, playerName)
	return args.Get(0).(rcon.GrantOutcome), args.Error(1)
}

// MockIdentityValidator is a mock implementation of service.IdentityValidator
type MockIdentityValidator struct {
	mock.Mock
}

func (m *MockIdentityValidator) IsValidPlayer(ctx context.Context, username string) bool {
	args := m.Called(ctx, username)
	return args.Bool(0)
}
