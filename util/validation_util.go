// util/validation_util.go

package util

import (
	"fmt"
	"regexp"

	"github.com/evspresso/walter/model"
)

// Mojang account names are 3-16 characters of letters, digits and underscore.
var minecraftUsernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]{3,16}$`)

type ValidationUtil struct{}

func NewValidationUtil() *ValidationUtil {
	return &ValidationUtil{}
}

// ValidateMinecraftUsername checks username syntax only; whether the account
// actually exists is the Mojang client's job.
func (v *ValidationUtil) ValidateMinecraftUsername(username string) error {
	if username == "" {
		return fmt.Errorf("minecraft username cannot be empty")
	}
	if !minecraftUsernamePattern.MatchString(username) {
		return fmt.Errorf("minecraft username %q is not a legal account name", username)
	}
	return nil
}

func (v *ValidationUtil) ValidateGrantRequest(req model.GrantRequest) error {
	if req.RequesterID == "" {
		return fmt.Errorf("requester ID cannot be empty")
	}
	if err := v.ValidateMinecraftUsername(req.PlayerName); err != nil {
		return err
	}
	return nil
}
