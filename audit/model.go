// audit/model.go
package audit

import "time"

type AuditLog struct {
	Timestamp     time.Time `json:"timestamp"`
	RequestID     string    `json:"request_id"`
	DiscordID     string    `json:"discord_id"`
	DiscordName   string    `json:"discord_name"`
	Action        string    `json:"action"`
	PlayerName    string    `json:"player_name"`
	Outcome       string    `json:"outcome"`
	AccessGranted bool      `json:"access_granted"`
}
