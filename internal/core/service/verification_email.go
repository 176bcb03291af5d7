package service

import (
	"fmt"
	"time"
)

// verificationEmail renders the subject and both bodies of the verification
// message. The HTML mirrors what the mobile clients expect to deep-link from.
func verificationEmail(name, link string, ttl time.Duration) (subject, text, html string) {
	minutes := int(ttl.Minutes())
	subject = "Verify Your Email"
	text = fmt.Sprintf(
		"Hi %s,\n\nClick the link below to verify your email:\n%s\n\nThe link expires in %d minutes.\n",
		name, link, minutes,
	)
	html = fmt.Sprintf(
		`<p>Hi %s,</p><p>Click the link below to verify your email:</p><a href="%s">Verify Email</a><p>The link expires in %d minutes.</p>`,
		name, link, minutes,
	)
	return subject, text, html
}
