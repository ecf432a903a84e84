package utils

import (
	"fmt"
	"log"
	"optic-app/config"
	"optic-app/grn"

	"gopkg.in/gomail.v2"
)

// SendReceiptNotification mails a completion notice for a finished receipt.
// Notification is best effort; a mail failure never fails the receipt.
func SendReceiptNotification(payload grn.CommitPayload, totals grn.Totals) {
	if config.SMTPHost == "" || config.MailNotify == "" {
		return
	}

	m := gomail.NewMessage()
	m.SetHeader("From", config.MailFrom)
	m.SetHeader("To", config.MailNotify)
	m.SetHeader("Subject", fmt.Sprintf("Goods receipt completed: %s", payload.DocumentNumber))

	body := fmt.Sprintf(
		"Document %s dated %s has been received.\nLines: %d\n",
		payload.DocumentNumber, payload.DocumentDate, len(payload.Lines),
	)
	if totals.Applicable {
		body += fmt.Sprintf("Quantity: %d\nNet value: %s\n", totals.Quantity, totals.NetValue.StringFixed(2))
	}
	m.SetBody("text/plain", body)

	d := gomail.NewDialer(config.SMTPHost, config.SMTPPort, config.SMTPUser, config.SMTPPassword)
	if err := d.DialAndSend(m); err != nil {
		log.Printf("Warning: failed to send receipt notification: %v", err)
	}
}
