package validation

import (
	"context"
	"net/mail"
	"unicode/utf8"

	"task-tracker/internal/model"
)

const (
	MinUsernameLength = 5
	MaxUsernameLength = 50
	MaxEmailLength    = 100
	MinPasswordLength = 6
	// bcrypt ignores everything past 72 bytes.
	MaxPasswordBytes = 72
)

// Registration is the input of account creation.
type Registration struct {
	Username        string
	Email           string
	Password        string
	ConfirmPassword string
}

// UserLookup answers the uniqueness questions registration depends on.
type UserLookup interface {
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// ValidateRegistrationInput runs the structural checks that need no storage:
// username and email shape, password length and confirmation.
func ValidateRegistrationInput(in Registration) error {
	if n := utf8.RuneCountInString(in.Username); n < MinUsernameLength || n > MaxUsernameLength {
		return model.NewValidationError(model.ErrInvalidRegistration, model.ErrUsernameLength)
	}
	if !validEmail(in.Email) {
		return model.NewValidationError(model.ErrInvalidRegistration, model.ErrEmailFormat)
	}
	if utf8.RuneCountInString(in.Password) < MinPasswordLength {
		return model.NewValidationError(model.ErrInvalidRegistration, model.ErrPasswordTooShort)
	}
	if len(in.Password) > MaxPasswordBytes {
		return model.NewValidationError(model.ErrInvalidRegistration, model.ErrPasswordTooLong)
	}
	if in.Password != in.ConfirmPassword {
		return model.ErrPasswordMismatch
	}
	return nil
}

// ValidateRegistration runs the structural checks, then the uniqueness checks
// for username and email in that order. Lookup failures are returned as is.
func ValidateRegistration(ctx context.Context, in Registration, users UserLookup) error {
	if err := ValidateRegistrationInput(in); err != nil {
		return err
	}

	taken, err := users.ExistsByUsername(ctx, in.Username)
	if err != nil {
		return err
	}
	if taken {
		return model.ErrUsernameTaken
	}

	taken, err = users.ExistsByEmail(ctx, in.Email)
	if err != nil {
		return err
	}
	if taken {
		return model.ErrEmailTaken
	}
	return nil
}

func validEmail(email string) bool {
	if email == "" || len(email) > MaxEmailLength {
		return false
	}
	addr, err := mail.ParseAddress(email)
	if err != nil {
		return false
	}
	// Reject display-name forms such as "Bob <bob@example.com>".
	return addr.Address == email
}
