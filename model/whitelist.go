// model/whitelist.go
package model

import "time"

// ConsumptionRecord marks a Discord user's one whitelist token as spent.
// At most one record ever exists per Discord ID; the database enforces it.
type ConsumptionRecord struct {
	DiscordID   string    `json:"discord_id"`
	DiscordName string    `json:"discord_name"`
	PlayerName  string    `json:"player_name"`
	CreatedAt   time.Time `json:"created_at"`
}

// GrantRecord marks a Minecraft username as already whitelisted, so a second
// request for the same player is rejected without touching the server.
type GrantRecord struct {
	PlayerName string    `json:"player_name"`
	CreatedAt  time.Time `json:"created_at"`
}

// GrantRequest is one inbound whitelist request as the Discord layer hands it
// to the service. RequesterID is trusted as given.
type GrantRequest struct {
	RequesterID   string `json:"requester_id"`
	RequesterName string `json:"requester_name"`
	PlayerName    string `json:"player_name" binding:"required"`
}

// MojangProfile is the subset of Mojang's profile lookup response we keep.
type MojangProfile struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
