package validation_test

import (
	"strings"
	"testing"
	"time"

	"storefront/internal/validation"

	"github.com/stretchr/testify/assert"
)

var fixedNow = time.Date(2026, time.June, 15, 12, 0, 0, 0, time.UTC)

func validInput() validation.RegistrationInput {
	return validation.RegistrationInput{
		Username: "alice_01",
		Password: "Str0ng!Pass",
		Email:    "a@b.com",
	}
}

func TestValidateRegistration_Valid(t *testing.T) {
	in := validInput()
	in.PhoneNumber = "123-456-7890"
	in.DateOfBirth = "1990-01-31"

	assert.Empty(t, validation.ValidateRegistration(in, fixedNow))
}

func TestValidateRegistration_Username(t *testing.T) {
	tests := []struct {
		name     string
		username string
		ok       bool
	}{
		{"too short", "abc", false},
		{"min length", "abcd", true},
		{"max length", strings.Repeat("a", 20), true},
		{"too long", strings.Repeat("a", 21), false},
		{"underscore", "john_doe", true},
		{"dash", "john-doe", false},
		{"space", "john doe", false},
		{"unicode", "jöhnny", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			in.Username = tt.username

			errs := validation.ValidateRegistration(in, fixedNow)
			if tt.ok {
				assert.NotContains(t, errs, validation.MsgUsername)
			} else {
				assert.Contains(t, errs, validation.MsgUsername)
			}
		})
	}
}

func TestValidateRegistration_Password(t *testing.T) {
	tests := []struct {
		name     string
		password string
		ok       bool
	}{
		{"valid", "Str0ng!Pass", true},
		{"no uppercase", "str0ng!pass", false},
		{"no digit", "Strong!Pass", false},
		{"no symbol", "Str0ngPass", false},
		{"too short", "S0!abcd", false},
		{"exactly eight", "S0!abcde", true},
		{"disallowed symbol", "Str0ng!Pass?", false},
		{"space", "Str0ng! Pass", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			in.Password = tt.password

			errs := validation.ValidateRegistration(in, fixedNow)
			if tt.ok {
				assert.NotContains(t, errs, validation.MsgPassword)
			} else {
				assert.Contains(t, errs, validation.MsgPassword)
			}
		})
	}
}

func TestValidateRegistration_PasswordLength(t *testing.T) {
	in := validInput()

	in.Password = "Str0ng!" + strings.Repeat("a", validation.MaxPasswordLength-7)
	assert.Empty(t, validation.ValidateRegistration(in, fixedNow))

	in.Password = "Str0ng!" + strings.Repeat("a", validation.MaxPasswordLength-6)
	assert.Equal(t, []string{validation.MsgPasswordTooLong}, validation.ValidateRegistration(in, fixedNow))
}

func TestValidateRegistration_Email(t *testing.T) {
	for _, email := range []string{"plain", "a@b", "a b@c.com", "a@@b.com", "@b.com", "a@.com"} {
		t.Run(email, func(t *testing.T) {
			in := validInput()
			in.Email = email
			assert.Contains(t, validation.ValidateRegistration(in, fixedNow), validation.MsgEmail)
		})
	}
}

func TestValidateRegistration_OptionalFields(t *testing.T) {
	in := validInput()
	in.PhoneNumber = "1234567890"
	in.DateOfBirth = "01/02/1990"

	errs := validation.ValidateRegistration(in, fixedNow)
	assert.Equal(t, []string{validation.MsgPhone, validation.MsgDateOfBirth}, errs)
}

func TestValidateRegistration_ImpossibleDate(t *testing.T) {
	in := validInput()
	in.DateOfBirth = "2001-02-30"

	assert.Equal(t, []string{validation.MsgDateOfBirth}, validation.ValidateRegistration(in, fixedNow))
}

func TestValidateRegistration_MinimumAge(t *testing.T) {
	tests := []struct {
		dob string
		ok  bool
	}{
		{"2013-06-15", true},  // turns 13 today
		{"2013-06-16", false}, // turns 13 tomorrow
		{"2013-07-01", false},
		{"2012-12-31", true},
		{"2020-01-01", false},
	}

	for _, tt := range tests {
		t.Run(tt.dob, func(t *testing.T) {
			in := validInput()
			in.DateOfBirth = tt.dob

			errs := validation.ValidateRegistration(in, fixedNow)
			if tt.ok {
				assert.Empty(t, errs)
			} else {
				assert.Equal(t, []string{validation.MsgTooYoung}, errs)
			}
		})
	}
}

func TestValidateRegistration_Accumulates(t *testing.T) {
	in := validation.RegistrationInput{
		Username:    "ab",
		Password:    "weak",
		Email:       "nope",
		PhoneNumber: "555",
		DateOfBirth: "2024-01-01",
	}

	errs := validation.ValidateRegistration(in, fixedNow)
	assert.Equal(t, []string{
		validation.MsgUsername,
		validation.MsgPassword,
		validation.MsgEmail,
		validation.MsgPhone,
		validation.MsgTooYoung,
	}, errs)
}

func TestAge(t *testing.T) {
	dob := time.Date(2000, time.February, 29, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, 25, validation.Age(dob, time.Date(2026, time.February, 28, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 26, validation.Age(dob, time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)))
}
