// Package validation holds the form checks shared by the signup, login and
// reset-password pages.
package validation

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// MinPasswordLength is the shortest password the forms accept.
const MinPasswordLength = 10

// Password requirements, in the order they are reported.
const (
	IssueLength    = "At least 10 characters"
	IssueUppercase = "One uppercase letter"
	IssueLowercase = "One lowercase letter"
	IssueNumber    = "One number"
	IssueSymbol    = "One symbol"
)

var (
	emailRegex = regexp.MustCompile(`^(?:[a-zA-Z0-9_'^&+%*-]+(?:\.[a-zA-Z0-9_'^&+%*-]+)*|"(?:["]|\\")+")@(?:[a-zA-Z0-9-]+\.)+[a-zA-Z]{2,}$`)

	upperRegex  = regexp.MustCompile(`[A-Z]`)
	lowerRegex  = regexp.MustCompile(`[a-z]`)
	digitRegex  = regexp.MustCompile(`[0-9]`)
	symbolRegex = regexp.MustCompile(`[\W_]`)
)

// IsValidEmail reports whether the trimmed input looks like local@domain.tld.
func IsValidEmail(email string) bool {
	return emailRegex.MatchString(strings.TrimSpace(email))
}

// PasswordIssues returns the unmet password requirements. An empty result
// means the password is acceptable.
func PasswordIssues(password string) []string {
	issues := []string{}

	if utf8.RuneCountInString(password) < MinPasswordLength {
		issues = append(issues, IssueLength)
	}
	if !upperRegex.MatchString(password) {
		issues = append(issues, IssueUppercase)
	}
	if !lowerRegex.MatchString(password) {
		issues = append(issues, IssueLowercase)
	}
	if !digitRegex.MatchString(password) {
		issues = append(issues, IssueNumber)
	}
	if !symbolRegex.MatchString(password) {
		issues = append(issues, IssueSymbol)
	}

	return issues
}

// PasswordMessage formats issues the way the forms display them.
func PasswordMessage(issues []string) string {
	return "Password needs: " + strings.Join(issues, ", ") + "."
}
