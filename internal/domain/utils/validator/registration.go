package validator

import (
	"net/mail"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/fasevent/registrations/internal/domain/common/errorz"
	"github.com/fasevent/registrations/internal/domain/dto"
)

var (
	utrRe   = regexp.MustCompile(`^[A-Za-z0-9]{12,16}$`)
	phoneRe = regexp.MustCompile(`^[0-9]{10}$`)
	emailRe = regexp.MustCompile(`^\S+@\S+\.\S+$`)
)

// UtrID reports whether s is a bank transaction reference: 12 to 16 ASCII letters or digits.
func UtrID(s string) bool {
	return utrRe.MatchString(s)
}

func Phone(s string) bool {
	return phoneRe.MatchString(s)
}

func Email(email string) bool {
	if !emailRe.MatchString(email) {
		return false
	}
	_, err := mail.ParseAddress(email)
	return err == nil
}

func Name(name string) bool {
	n := utf8.RuneCountInString(strings.TrimSpace(name))
	return n >= 2 && n <= 100
}

func Age(age int) bool {
	return age > 0
}

// NormalizeEmail lower-cases and trims an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Registration checks the whole form and returns the first problem as a validation error.
// The input is normalized in place.
func Registration(input *dto.RegistrationInput) error {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = NormalizeEmail(input.Email)
	input.Phone = strings.TrimSpace(input.Phone)
	input.UtrID = strings.TrimSpace(input.UtrID)
	input.PaymentScreenshotURL = strings.TrimSpace(input.PaymentScreenshotURL)

	switch {
	case !Name(input.Name):
		return errorz.Validation("name is required")
	case !Age(input.Age):
		return errorz.Validation("age must be a positive number")
	case !input.Gender.Valid():
		return errorz.Validation("gender must be one of male, female, other")
	case !Email(input.Email):
		return errorz.Validation("invalid email address")
	case !Phone(input.Phone):
		return errorz.Validation("phone number must be exactly 10 digits")
	case !input.EducationStatus.Valid():
		return errorz.Validation("education status must be one of inCollege, school, none")
	case !input.ParticipationCategories.Any():
		return errorz.Validation("select at least one participation category")
	case !UtrID(input.UtrID):
		return errorz.Validation("UTR ID must be 12 to 16 alphanumeric characters")
	case input.PaymentScreenshotURL == "":
		return errorz.Validation("payment screenshot is required")
	}
	return nil
}
