package mail

import "fmt"

// Message is one outbound email.
type Message struct {
	To       string
	ToName   string
	Subject  string
	HTMLBody string
}

// Service delivers messages fire-and-forget: implementations send on their
// own goroutine and must never block or fail the calling request. State
// changes (verification, password reset) are already committed by the time
// a message is handed over.
type Service interface {
	Send(msg Message)
}

// VerificationMessage builds the OTP email sent after signup.
func VerificationMessage(to, name, otp string) Message {
	return Message{
		To:      to,
		ToName:  name,
		Subject: "Verify your email account",
		HTMLBody: fmt.Sprintf(
			`<p>Hello %s,</p><p>Use this code to verify your email address:</p><h2>%s</h2><p>The code expires in 10 minutes.</p>`,
			name, otp),
	}
}

// WelcomeMessage builds the post-verification email.
func WelcomeMessage(to, name string) Message {
	return Message{
		To:      to,
		ToName:  name,
		Subject: "Welcome Email",
		HTMLBody: fmt.Sprintf(
			`<p>Hello %s,</p><p>Email verified successfully. Thanks for connecting with us!</p>`, name),
	}
}

// PasswordResetMessage builds the reset-link email.
func PasswordResetMessage(to, name, resetURL string) Message {
	return Message{
		To:      to,
		ToName:  name,
		Subject: "Password Reset",
		HTMLBody: fmt.Sprintf(
			`<p>Hello %s,</p><p>Click the link below to reset your password. The link is valid for 10 minutes.</p><p><a href="%s">Reset Password</a></p>`,
			name, resetURL),
	}
}

// PasswordResetDoneMessage builds the post-reset confirmation email.
func PasswordResetDoneMessage(to, name string) Message {
	return Message{
		To:      to,
		ToName:  name,
		Subject: "Password Reset Success",
		HTMLBody: fmt.Sprintf(
			`<p>Hello %s,</p><p>Password reset successfully. Now you can login to your account with your new password!</p>`, name),
	}
}
