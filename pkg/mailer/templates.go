package mailer

import "fmt"

// VerificationMessage builds the subject and body for an email
// verification code message.
func VerificationMessage(code string, expiryMinutes int) (subject, body string) {
	subject = "Your ZuGo verification code"
	body = fmt.Sprintf(
		"Your ZuGo verification code is %s. It expires in %d minutes.\n\nIf you did not request this code, you can ignore this message.",
		code, expiryMinutes,
	)
	return subject, body
}

// PasswordResetMessage builds the subject and body for a password reset
// code message. The mobile app collects the code and the new password
// on the reset screen.
func PasswordResetMessage(code string, expiryMinutes int) (subject, body string) {
	subject = "Reset your ZuGo password"
	body = fmt.Sprintf(
		"A password reset was requested for your ZuGo account.\n\nYour reset code is %s. It expires in %d minutes.\n\nIf you did not request a reset, ignore this message.",
		code, expiryMinutes,
	)
	return subject, body
}
