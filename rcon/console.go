// rcon/console.go

// Package rcon maintains the authenticated command session to the Minecraft
// server and issues whitelist commands over it.
package rcon

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/gorcon/rcon"
	"go.uber.org/zap"

	walter_errors "github.com/evspresso/walter/errors"
	logger "github.com/evspresso/walter/logging"
)

// GrantOutcome is the translated result of a whitelist add command.
type GrantOutcome int

const (
	// Added means the server accepted the command and the player is now
	// whitelisted.
	Added GrantOutcome = iota
	// AlreadyWhitelisted means the server reported the player was on the
	// whitelist before the command ran.
	AlreadyWhitelisted
)

// alreadyWhitelistedReply is the vanilla server's reply when the player is on
// the whitelist already. Reply text from the server is not an enumerable set,
// so this is the only string we match on.
const alreadyWhitelistedReply = "Player is already whitelisted"

type executor interface {
	Execute(command string) (string, error)
	Close() error
}

// Console is the single persistent RCON session. The vanilla server does not
// multiplex commands on one connection, so commands are serialized here.
type Console struct {
	mu   sync.Mutex
	conn executor
}

// Connect dials and authenticates the RCON session. The session stays open
// until Close; there is no automatic reconnect.
func Connect(address, password string) (*Console, error) {
	conn, err := rcon.Dial(address, password)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to rcon at %s: %w", address, err)
	}
	logger.Info("Connected to Minecraft server via RCON", zap.String("address", address))
	return &Console{conn: conn}, nil
}

// IssueGrant sends one whitelist add command for the player and translates
// the reply. A transport error fails only this request; the caller decides
// what to do with the session.
func (c *Console) IssueGrant(ctx context.Context, playerName string) (GrantOutcome, error) {
	if err := ctx.Err(); err != nil {
		return Added, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	response, err := c.conn.Execute(fmt.Sprintf("whitelist add %s", playerName))
	if err != nil {
		logger.Error("RCON whitelist command failed",
			zap.String("playerName", playerName),
			zap.Error(err))
		return Added, fmt.Errorf("%w: %v", walter_errors.ErrRconUnavailable, err)
	}

	logger.Info("(RCON)", zap.String("response", response))
	return ParseWhitelistReply(response), nil
}

// ParseWhitelistReply maps the server's reply text onto a GrantOutcome.
// Anything other than the known already-whitelisted sentinel is treated as
// success: the server's reply vocabulary varies between versions and an
// unrecognized reply must not fail a grant that was in fact applied.
func ParseWhitelistReply(reply string) GrantOutcome {
	if strings.TrimSpace(reply) == alreadyWhitelistedReply {
		return AlreadyWhitelisted
	}
	return Added
}

// Close tears the session down. Called during shutdown, after the ledger has
// been flushed.
func (c *Console) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	if err != nil {
		logger.Error("Error closing RCON session", zap.Error(err))
		return err
	}
	logger.Info("RCON session closed successfully")
	return nil
}
