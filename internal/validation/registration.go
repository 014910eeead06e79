// Package validation holds the field rules applied to registration requests.
package validation

import (
	"regexp"
	"time"
)

// MinimumAge is the youngest age allowed to register.
const MinimumAge = 13

// Messages returned by ValidateRegistration.
const (
	MsgUsername    = "Username must be alphanumeric and between 4 to 20 characters."
	MsgPassword    = "Password must have at least 8 characters, including one uppercase letter, one number, and one special character."
	MsgEmail       = "Invalid email address format."
	MsgPhone       = "Phone number must match the format 123-456-7890."
	MsgDateOfBirth = "Date of birth must be in YYYY-MM-DD format."
	MsgTooYoung    = "User must be at least 13 years old."

	MsgPasswordTooLong = "Password must be at most 72 characters."
)

// MaxPasswordLength is the longest password bcrypt can hash.
const MaxPasswordLength = 72

const dateLayout = "2006-01-02"

var (
	usernameRe = regexp.MustCompile(`^[a-zA-Z0-9_]{4,20}$`)

	// RE2 has no lookahead, so the password rule is a charset check plus
	// one presence check per required class.
	passwordCharsetRe = regexp.MustCompile(`^[A-Za-z0-9!@#$%^&*]{8,}$`)
	upperRe           = regexp.MustCompile(`[A-Z]`)
	digitRe           = regexp.MustCompile(`[0-9]`)
	symbolRe          = regexp.MustCompile(`[!@#$%^&*]`)

	emailRe       = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	phoneRe       = regexp.MustCompile(`^\d{3}-\d{3}-\d{4}$`)
	dateOfBirthRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

// RegistrationInput carries the fields checked at registration.
type RegistrationInput struct {
	Username    string
	Password    string
	Email       string
	PhoneNumber string
	DateOfBirth string
}

// ValidateRegistration returns one message per violated rule, in a fixed
// order. An empty result means the input is acceptable.
func ValidateRegistration(in RegistrationInput, now time.Time) []string {
	var errs []string

	if !usernameRe.MatchString(in.Username) {
		errs = append(errs, MsgUsername)
	}

	if len(in.Password) > MaxPasswordLength {
		errs = append(errs, MsgPasswordTooLong)
	} else if !ValidPassword(in.Password) {
		errs = append(errs, MsgPassword)
	}

	if !emailRe.MatchString(in.Email) {
		errs = append(errs, MsgEmail)
	}

	if in.PhoneNumber != "" && !phoneRe.MatchString(in.PhoneNumber) {
		errs = append(errs, MsgPhone)
	}

	if in.DateOfBirth != "" {
		if !dateOfBirthRe.MatchString(in.DateOfBirth) {
			errs = append(errs, MsgDateOfBirth)
		} else if dob, err := time.Parse(dateLayout, in.DateOfBirth); err != nil {
			// well formed but not a calendar date, e.g. 2001-02-30
			errs = append(errs, MsgDateOfBirth)
		} else if Age(dob, now) < MinimumAge {
			errs = append(errs, MsgTooYoung)
		}
	}

	return errs
}

// ValidPassword reports whether pw satisfies the password policy.
func ValidPassword(pw string) bool {
	return passwordCharsetRe.MatchString(pw) &&
		upperRe.MatchString(pw) &&
		digitRe.MatchString(pw) &&
		symbolRe.MatchString(pw)
}

// Age returns the number of whole years between dob and now.
func Age(dob, now time.Time) int {
	age := now.Year() - dob.Year()
	if now.Month() < dob.Month() || (now.Month() == dob.Month() && now.Day() < dob.Day()) {
		age--
	}
	return age
}
