// Package email is the delivery boundary. Actual sending happens in an
// external service; this logs the outgoing message so campaign and contact
// flows can be exercised end to end without an API key.
package email

import (
	"fmt"
	"log"
)

// Send logs an outgoing email in place of real delivery.
func Send(to string, subject string, body string) error {
	log.Println("====================================================")
	log.Printf("--- OUTGOING EMAIL ---")
	log.Printf("To: %s", to)
	log.Printf("Subject: %s", subject)
	log.Println("--- Body ---")
	log.Println(body)
	log.Println("====================================================")
	return nil
}

// SendTestNewsletter sends a single campaign preview to one address.
func SendTestNewsletter(to string, subject string, body string) error {
	return Send(to, fmt.Sprintf("[TEST] %s", subject), body)
}
