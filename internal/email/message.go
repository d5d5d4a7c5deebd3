package email

import (
	"bufio"
	"bytes"
	"fmt"
	"strings"
	"time"
)

// TemplateHeader names the template a message was rendered from. Mock senders
// key stored messages by it.
const TemplateHeader = "X-Template-ID"

// Message is a plain-text email ready to be serialised.
type Message struct {
	From       string
	To         []string
	Subject    string
	Body       string
	TemplateID string
	Date       time.Time
}

// Bytes renders the message with the headers every sender expects.
func (m Message) Bytes() []byte {
	date := m.Date
	if date.IsZero() {
		date = time.Now()
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("To: %s\r\n", strings.Join(m.To, ", ")))
	sb.WriteString(fmt.Sprintf("From: %s\r\n", m.From))
	sb.WriteString(fmt.Sprintf("Subject: %s\r\n", m.Subject))
	sb.WriteString("Date: " + date.Format(time.RFC1123Z) + "\r\n")
	if m.TemplateID != "" {
		sb.WriteString(fmt.Sprintf("%s: %s\r\n", TemplateHeader, m.TemplateID))
	}
	sb.WriteString("MIME-Version: 1.0\r\n")
	sb.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	sb.WriteString("\r\n")
	sb.WriteString(m.Body)
	if !strings.HasSuffix(m.Body, "\r\n") {
		sb.WriteString("\r\n")
	}
	return []byte(sb.String())
}

// HeaderValue returns the value of a header in a raw message, or "".
func HeaderValue(rawMessage []byte, name string) string {
	scanner := bufio.NewScanner(bytes.NewReader(rawMessage))
	prefix := strings.ToLower(name) + ":"
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" {
			break
		}
		if strings.HasPrefix(strings.ToLower(line), prefix) {
			return strings.TrimSpace(line[len(prefix):])
		}
	}
	return ""
}
