// Package mailer sends transactional mail. Three implementations: SMTP for
// self-hosted delivery, MailerSend for the hosted API, and a dev mailer
// that logs instead of sending.
package mailer

import "fmt"

type Service interface {
	SendPasswordReset(toEmail, toName, resetURL string) error
	SendStatusChange(toEmail, toName, status string) error
}

func passwordResetBodies(toName, resetURL string) (subject, text, html string) {
	subject = "Password Reset Request"
	text = fmt.Sprintf("Please click the link to reset your password: %s\n\nThe link expires in 1 hour.", resetURL)
	html = fmt.Sprintf(`
		<h2>Password Reset</h2>
		<p>Hi %s,</p>
		<p>We received a request to reset your password. Click the button below to choose a new one:</p>
		<p><a href="%s" style="background-color: #2563eb; color: white; padding: 10px 20px; text-decoration: none; border-radius: 5px;">Reset Password</a></p>
		<p>This link will expire in 1 hour.</p>
		<p>If you didn't ask for a reset, you can safely ignore this email.</p>
	`, toName, resetURL)
	return subject, text, html
}

func statusChangeBodies(toName, status string) (subject, text, html string) {
	switch status {
	case "approved":
		subject = "Your account has been approved"
		text = fmt.Sprintf("Hi %s, your account has been approved. You can now sign in and start building itineraries.", toName)
		html = fmt.Sprintf(`
			<h2>Welcome aboard!</h2>
			<p>Hi %s,</p>
			<p>Your account has been <strong>approved</strong>. You can now sign in and start building itineraries.</p>
		`, toName)
	case "rejected":
		subject = "Your account request was not approved"
		text = fmt.Sprintf("Hi %s, unfortunately your signup request was not approved. Reply to this email if you believe this is a mistake.", toName)
		html = fmt.Sprintf(`
			<h2>Request not approved</h2>
			<p>Hi %s,</p>
			<p>Unfortunately your signup request was <strong>not approved</strong>.</p>
			<p>Reply to this email if you believe this is a mistake.</p>
		`, toName)
	case "blocked":
		subject = "Your account has been blocked"
		text = fmt.Sprintf("Hi %s, your account has been blocked. Contact support for details.", toName)
		html = fmt.Sprintf(`
			<h2>Account blocked</h2>
			<p>Hi %s,</p>
			<p>Your account has been <strong>blocked</strong>. Contact support for details.</p>
		`, toName)
	default:
		subject = "Your account status has changed"
		text = fmt.Sprintf("Hi %s, your account status is now %q.", toName, status)
		html = fmt.Sprintf(`<p>Hi %s, your account status is now <strong>%s</strong>.</p>`, toName, status)
	}
	return subject, text, html
}
