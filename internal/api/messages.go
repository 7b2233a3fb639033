package api

import "github.com/illegalcall/tracys-match/internal/validation"

const (
	toneError   = "error"
	toneSuccess = "success"
)

// Messages shown on the forms.
const (
	msgSignupEmail     = "Please use a valid email address."
	msgLoginEmail      = "Enter a valid email address."
	msgResetEmail      = "Enter a valid email address to receive a reset link."
	msgLoginResetEmail = "Enter your email first to receive a reset link."
	msgPasswordsMatch  = "Passwords must match."
	msgConfirmEmail    = "Check your email to confirm your account. Verification is required before accessing dashboards."
	msgResetSent       = "Password reset email sent. Check your inbox."
	msgPasswordSaved   = "Password updated. You can now sign in."
	msgNameRequired    = "Add a name before saving."
	msgChooseRole      = "Choose whether you are dating or curating."
	msgUnknownEntry    = "That candidate is no longer in your pool."
	msgInvalidStatus   = "Pick one of the listed options."
	msgProfileSaved    = "Profile updated. Helpers can now see your bio and photos."
	msgNoPhotos        = "Choose at least one photo to upload."
)

// signupProblem returns the first rule the signup form breaks, or "".
func signupProblem(email, password, confirm string) string {
	if !validation.IsValidEmail(email) {
		return msgSignupEmail
	}
	if msg := passwordProblem(password, confirm); msg != "" {
		return msg
	}
	return ""
}

// loginProblem returns the first rule the login form breaks, or "".
func loginProblem(email, password string) string {
	if !validation.IsValidEmail(email) {
		return msgLoginEmail
	}
	if issues := validation.PasswordIssues(password); len(issues) > 0 {
		return validation.PasswordMessage(issues)
	}
	return ""
}

// passwordProblem checks a new password and its confirmation.
func passwordProblem(password, confirm string) string {
	if issues := validation.PasswordIssues(password); len(issues) > 0 {
		return validation.PasswordMessage(issues)
	}
	if password != confirm {
		return msgPasswordsMatch
	}
	return ""
}
