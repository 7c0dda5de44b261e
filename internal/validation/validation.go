package validation

import (
	"errors"
	"fmt"
	"net/mail"
	"net/url"
	"strings"
	"unicode/utf8"
)

const (
	maxTitleLength  = 200
	maxNotesLength  = 10000
	maxResumeLength = 200000
)

// Application status values, in pipeline order
const (
	StatusSaved        = "saved"
	StatusApplied      = "applied"
	StatusInterviewing = "interviewing"
	StatusOffer        = "offer"
	StatusRejected     = "rejected"
	StatusWithdrawn    = "withdrawn"
)

var applicationStatuses = map[string]bool{
	StatusSaved:        true,
	StatusApplied:      true,
	StatusInterviewing: true,
	StatusOffer:        true,
	StatusRejected:     true,
	StatusWithdrawn:    true,
}

// ValidateRequiredText checks a required single-line field such as a job title
func ValidateRequiredText(field, value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return fmt.Errorf("%s cannot be empty", field)
	}
	if utf8.RuneCountInString(value) > maxTitleLength {
		return fmt.Errorf("%s must be %d characters or less", field, maxTitleLength)
	}
	if strings.ContainsAny(value, "\r\n") {
		return fmt.Errorf("%s cannot contain line breaks", field)
	}
	return nil
}

// ValidateNotes checks a free-text field
func ValidateNotes(notes string) error {
	if utf8.RuneCountInString(notes) > maxNotesLength {
		return fmt.Errorf("notes must be %d characters or less", maxNotesLength)
	}
	return nil
}

// ValidateResumeContent checks the body of a resume document
func ValidateResumeContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return errors.New("content cannot be empty")
	}
	if utf8.RuneCountInString(content) > maxResumeLength {
		return fmt.Errorf("content must be %d characters or less", maxResumeLength)
	}
	return nil
}

// ValidateURL checks an optional link. Empty is allowed.
func ValidateURL(raw string) error {
	if raw == "" {
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return errors.New("invalid url")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.New("url must use http or https")
	}
	if u.Host == "" {
		return errors.New("url must include a host")
	}
	return nil
}

// ValidateApplicationStatus checks status against the known pipeline stages
func ValidateApplicationStatus(status string) error {
	if !applicationStatuses[status] {
		return fmt.Errorf("unknown status %q", status)
	}
	return nil
}

// ValidateEmail checks an optional email address. Empty is allowed.
func ValidateEmail(email string) error {
	if email == "" {
		return nil
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return errors.New("invalid email address")
	}
	return nil
}
