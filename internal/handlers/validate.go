// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"regexp"
	"strings"
	"time"
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	otpPattern   = regexp.MustCompile(`^\d{6}$`)
	datePattern  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

const minSignupAge = 13

func isValidEmail(email string) bool {
	return emailPattern.MatchString(strings.TrimSpace(email))
}

func isValidOTP(code string) bool {
	return otpPattern.MatchString(code)
}

// validateDOB checks the YYYY-MM-DD format and the minimum signup age.
func validateDOB(dob string, now time.Time) (string, bool) {
	if !datePattern.MatchString(dob) {
		return "Please provide a valid date of birth (YYYY-MM-DD format)", false
	}
	birth, err := time.Parse("2006-01-02", dob)
	if err != nil {
		return "Please provide a valid date of birth (YYYY-MM-DD format)", false
	}
	if birth.After(now.AddDate(-minSignupAge, 0, 0)) {
		return "You must be at least 13 years old to sign up", false
	}
	return "", true
}

func validateName(name string) bool {
	return len(strings.TrimSpace(name)) >= 2
}

// validateNoteFields enforces the note length rules. Nil fields are
// skipped so partial updates only validate what they touch.
func validateNoteFields(title, content *string) []string {
	var errs []string
	if title != nil && len(strings.TrimSpace(*title)) < 3 {
		errs = append(errs, "Title must be at least 3 characters long")
	}
	if content != nil && len(strings.TrimSpace(*content)) < 10 {
		errs = append(errs, "Content must be at least 10 characters long")
	}
	return errs
}
