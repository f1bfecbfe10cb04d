package utils

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strconv"

	"gopkg.in/gomail.v2"
)

// SendMail delivers a plain-text email. When EMAIL_API_URL is set the
// transactional email API is used, otherwise direct SMTP.
func SendMail(to, subject, body string) error {
	if os.Getenv("EMAIL_API_URL") != "" {
		return sendViaAPI(to, subject, body)
	}
	return sendViaSMTP(to, subject, body)
}

func sendViaSMTP(to, subject, body string) error {
	smtpHost := os.Getenv("SMTP_HOST")
	smtpPort := os.Getenv("SMTP_PORT")
	smtpUser := os.Getenv("SMTP_USER")
	smtpPass := os.Getenv("SMTP_PASS")

	m := gomail.NewMessage()
	m.SetHeader("From", smtpUser)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	port, err := strconv.Atoi(smtpPort)
	if err != nil {
		return fmt.Errorf("invalid SMTP port: %v", err)
	}
	d := gomail.NewDialer(smtpHost, port, smtpUser, smtpPass)

	return d.DialAndSend(m)
}

func sendViaAPI(to, subject, body string) error {
	apiURL := os.Getenv("EMAIL_API_URL")
	apiKey := os.Getenv("EMAIL_API_KEY")

	payload, err := json.Marshal(map[string]string{
		"from":    os.Getenv("EMAIL_FROM"),
		"to":      to,
		"subject": subject,
		"text":    body,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequest("POST", apiURL, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("email API returned status %d", resp.StatusCode)
	}
	return nil
}
