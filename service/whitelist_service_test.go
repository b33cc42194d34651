// service/whitelist_service_test.go
package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	testify_mock "github.com/stretchr/testify/mock"

	"github.com/evspresso/walter/audit"
	walter_errors "github.com/evspresso/walter/errors"
	logger "github.com/evspresso/walter/logging"
	"github.com/evspresso/walter/model"
	"github.com/evspresso/walter/rcon"
	"github.com/evspresso/walter/service"
	walter_mock "github.com/evspresso/walter/test/mock"
	"github.com/evspresso/walter/util"
)

type fixture struct {
	ledger    *walter_mock.MockLedger
	validator *walter_mock.MockIdentityValidator
	console   *walter_mock.MockAccessChannel
	audit     *walter_mock.MockAuditService
	service   *service.WhitelistService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger.InitLogger(t.TempDir())

	f := &fixture{
		ledger:    new(walter_mock.MockLedger),
		validator: new(walter_mock.MockIdentityValidator),
		console:   new(walter_mock.MockAccessChannel),
		audit:     new(walter_mock.MockAuditService),
	}
	f.audit.On("LogAccess", testify_mock.Anything, testify_mock.Anything).Return(nil)

	f.service = service.NewWhitelistService(
		f.ledger,
		f.validator,
		f.console,
		util.NewValidationUtil(),
		f.audit,
		util.NewNotificationService(),
		util.NewEventBus(),
	)
	return f
}

func assertAuditedOutcome(t *testing.T, f *fixture, outcome string) {
	t.Helper()
	f.audit.AssertCalled(t, "LogAccess", testify_mock.Anything, testify_mock.MatchedBy(func(log audit.AuditLog) bool {
		return log.Outcome == outcome
	}))
}

func request(requesterID, playerName string) model.GrantRequest {
	return model.GrantRequest{
		RequesterID:   requesterID,
		RequesterName: "alice#0",
		PlayerName:    playerName,
	}
}

func TestAddToWhitelist_Success(t *testing.T) {
	f := newFixture(t)

	f.ledger.On("HasConsumed", testify_mock.Anything, "alice").Return(false, nil)
	f.ledger.On("IsGranted", testify_mock.Anything, "Notch").Return(false, nil)
	f.validator.On("IsValidPlayer", testify_mock.Anything, "Notch").Return(true)
	f.console.On("IssueGrant", testify_mock.Anything, "Notch").Return(rcon.Added, nil)
	f.ledger.On("RecordResolution", testify_mock.Anything, testify_mock.MatchedBy(func(rec model.ConsumptionRecord) bool {
		return rec.DiscordID == "alice" && rec.PlayerName == "Notch"
	})).Return(nil)

	status, err := f.service.AddToWhitelist(context.Background(), request("alice", "Notch"))

	assert.NoError(t, err)
	assert.Equal(t, service.StatusOK, status)
	f.ledger.AssertNumberOfCalls(t, "RecordResolution", 1)
}

func TestAddToWhitelist_TokenAlreadySpent(t *testing.T) {
	f := newFixture(t)

	f.ledger.On("HasConsumed", testify_mock.Anything, "alice").Return(true, nil)

	// The target doesn't matter on a repeat request; no lookup, no RCON
	// command and no write may happen.
	status, err := f.service.AddToWhitelist(context.Background(), request("alice", "Steve"))

	assert.NoError(t, err)
	assert.Equal(t, service.StatusDiscordAlreadyUsed, status)
	f.validator.AssertNotCalled(t, "IsValidPlayer", testify_mock.Anything, testify_mock.Anything)
	f.console.AssertNotCalled(t, "IssueGrant", testify_mock.Anything, testify_mock.Anything)
	f.ledger.AssertNotCalled(t, "RecordResolution", testify_mock.Anything, testify_mock.Anything)
}

func TestAddToWhitelist_PlayerAlreadyGranted(t *testing.T) {
	f := newFixture(t)

	f.ledger.On("HasConsumed", testify_mock.Anything, "bob").Return(false, nil)
	f.ledger.On("IsGranted", testify_mock.Anything, "Notch").Return(true, nil)

	status, err := f.service.AddToWhitelist(context.Background(), request("bob", "Notch"))

	assert.NoError(t, err)
	assert.Equal(t, service.StatusAlreadyWhitelisted, status)
	// Short-circuited before validation: no second command is issued and
	// the requester keeps their token.
	f.console.AssertNotCalled(t, "IssueGrant", testify_mock.Anything, testify_mock.Anything)
	f.ledger.AssertNotCalled(t, "RecordResolution", testify_mock.Anything, testify_mock.Anything)
}

func TestAddToWhitelist_InvalidPlayer(t *testing.T) {
	f := newFixture(t)

	f.ledger.On("HasConsumed", testify_mock.Anything, "alice").Return(false, nil)
	f.ledger.On("IsGranted", testify_mock.Anything, "Ghost").Return(false, nil)
	f.validator.On("IsValidPlayer", testify_mock.Anything, "Ghost").Return(false)

	status, err := f.service.AddToWhitelist(context.Background(), request("alice", "Ghost"))

	assert.NoError(t, err)
	assert.Equal(t, service.StatusMinecraftUserNotValid, status)
	f.console.AssertNotCalled(t, "IssueGrant", testify_mock.Anything, testify_mock.Anything)
	f.ledger.AssertNotCalled(t, "RecordResolution", testify_mock.Anything, testify_mock.Anything)
}

func TestAddToWhitelist_BadUsernameSyntax(t *testing.T) {
	f := newFixture(t)

	status, err := f.service.AddToWhitelist(context.Background(), request("alice", "no spaces!!"))

	assert.NoError(t, err)
	assert.Equal(t, service.StatusMinecraftUserNotValid, status)
	// Syntactically illegal names never leave the process.
	f.ledger.AssertNotCalled(t, "HasConsumed", testify_mock.Anything, testify_mock.Anything)
	f.validator.AssertNotCalled(t, "IsValidPlayer", testify_mock.Anything, testify_mock.Anything)
}

func TestAddToWhitelist_ServerReportsAlreadyWhitelisted(t *testing.T) {
	f := newFixture(t)

	f.ledger.On("HasConsumed", testify_mock.Anything, "carol").Return(false, nil)
	f.ledger.On("IsGranted", testify_mock.Anything, "Notch").Return(false, nil)
	f.validator.On("IsValidPlayer", testify_mock.Anything, "Notch").Return(true)
	f.console.On("IssueGrant", testify_mock.Anything, "Notch").Return(rcon.AlreadyWhitelisted, nil)
	f.ledger.On("RecordResolution", testify_mock.Anything, testify_mock.Anything).Return(nil)

	status, err := f.service.AddToWhitelist(context.Background(), request("carol", "Notch"))

	assert.NoError(t, err)
	assert.Equal(t, service.StatusAlreadyWhitelisted, status)
	// The request resolved past validation, so the token is spent even
	// though the server already had the player.
	f.ledger.AssertNumberOfCalls(t, "RecordResolution", 1)
}

func TestAddToWhitelist_RconFailure(t *testing.T) {
	f := newFixture(t)

	f.ledger.On("HasConsumed", testify_mock.Anything, "alice").Return(false, nil)
	f.ledger.On("IsGranted", testify_mock.Anything, "Notch").Return(false, nil)
	f.validator.On("IsValidPlayer", testify_mock.Anything, "Notch").Return(true)
	f.console.On("IssueGrant", testify_mock.Anything, "Notch").
		Return(rcon.Added, walter_errors.ErrRconUnavailable)

	status, err := f.service.AddToWhitelist(context.Background(), request("alice", "Notch"))

	assert.ErrorIs(t, err, walter_errors.ErrRconUnavailable)
	assert.Equal(t, service.StatusInternalError, status)
	f.ledger.AssertNotCalled(t, "RecordResolution", testify_mock.Anything, testify_mock.Anything)
	assertAuditedOutcome(t, f, "INTERNAL_ERROR")
}

func TestAddToWhitelist_TokenRaceLoser(t *testing.T) {
	f := newFixture(t)

	f.ledger.On("HasConsumed", testify_mock.Anything, "alice").Return(false, nil)
	f.ledger.On("IsGranted", testify_mock.Anything, "Notch").Return(false, nil)
	f.validator.On("IsValidPlayer", testify_mock.Anything, "Notch").Return(true)
	f.console.On("IssueGrant", testify_mock.Anything, "Notch").Return(rcon.Added, nil)
	f.ledger.On("RecordResolution", testify_mock.Anything, testify_mock.Anything).
		Return(walter_errors.ErrTokenAlreadyUsed)

	status, err := f.service.AddToWhitelist(context.Background(), request("alice", "Notch"))

	assert.NoError(t, err)
	assert.Equal(t, service.StatusDiscordAlreadyUsed, status)
}

func TestAddToWhitelist_PersistenceFailureSurfaces(t *testing.T) {
	f := newFixture(t)

	f.ledger.On("HasConsumed", testify_mock.Anything, "alice").Return(false, nil)
	f.ledger.On("IsGranted", testify_mock.Anything, "Notch").Return(false, nil)
	f.validator.On("IsValidPlayer", testify_mock.Anything, "Notch").Return(true)
	f.console.On("IssueGrant", testify_mock.Anything, "Notch").Return(rcon.Added, nil)
	f.ledger.On("RecordResolution", testify_mock.Anything, testify_mock.Anything).
		Return(walter_errors.ErrDatabaseOperation)

	status, err := f.service.AddToWhitelist(context.Background(), request("alice", "Notch"))

	// A lost ledger write would hand the user extra grants; the failure
	// must not be absorbed into a success.
	assert.ErrorIs(t, err, walter_errors.ErrDatabaseOperation)
	assert.Equal(t, service.StatusInternalError, status)
	assertAuditedOutcome(t, f, "INTERNAL_ERROR")
}

func TestAddToWhitelist_LedgerReadFailure(t *testing.T) {
	f := newFixture(t)

	f.ledger.On("HasConsumed", testify_mock.Anything, "alice").
		Return(false, errors.New("disk gone"))

	status, err := f.service.AddToWhitelist(context.Background(), request("alice", "Notch"))

	assert.Error(t, err)
	assert.Equal(t, service.StatusInternalError, status)
	assertAuditedOutcome(t, f, "INTERNAL_ERROR")
}

func TestListTokens(t *testing.T) {
	f := newFixture(t)

	records := []*model.ConsumptionRecord{
		{DiscordID: "alice", PlayerName: "Notch"},
	}
	f.ledger.On("ListConsumptions", testify_mock.Anything, 10, 0).Return(records, nil)

	got, err := f.service.ListTokens(context.Background(), 10, 0)

	assert.NoError(t, err)
	assert.Equal(t, records, got)
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "OK", service.StatusOK.String())
	assert.Equal(t, "DISCORD_ALREADY_USED", service.StatusDiscordAlreadyUsed.String())
	assert.Equal(t, "ALREADY_WHITELISTED", service.StatusAlreadyWhitelisted.String())
	assert.Equal(t, "MINECRAFT_USER_NOT_VALID", service.StatusMinecraftUserNotValid.String())
	assert.Equal(t, "INTERNAL_ERROR", service.StatusInternalError.String())
}
