package email

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/zunayedTheCreator/property-prospect-server/internal/config"
)

// MockEmailKey is where RedisSender stores the last message of a template for a recipient.
func MockEmailKey(to, templateID string) string {
	return fmt.Sprintf("mockemail:%s:%s", strings.ToLower(to), templateID)
}

// RedisSender implements the Sender interface by storing emails in Redis.
type RedisSender struct {
	client *redis.Client
	cfg    *config.Config
}

// NewRedisSender creates a new RedisSender
func NewRedisSender(client *redis.Client, cfg *config.Config) Sender {
	return &RedisSender{
		client: client,
		cfg:    cfg,
	}
}

// Send stores a representation of the email in Redis instead of sending it via SMTP.
// Integration tests read it back through the service API.
func (s *RedisSender) Send(ctx context.Context, to []string, subject string, rawMessage []byte) error {
	bodyStr := string(rawMessage)
	templateID := HeaderValue(rawMessage, TemplateHeader)
	if templateID == "" {
		templateID = "unknown"
	}

	// The first recipient keys the message.
	primaryTo := ""
	if len(to) > 0 {
		primaryTo = to[0]
	}

	emailData := map[string]interface{}{
		"to":         strings.Join(to, ", "),
		"from":       s.cfg.SmtpFromAddress,
		"subject":    subject,
		"body":       bodyStr,
		"sent_at":    time.Now().UTC().Format(time.RFC3339Nano),
		"templateId": templateID,
	}

	jsonData, err := json.Marshal(emailData)
	if err != nil {
		return fmt.Errorf("failed to marshal email data: %w", err)
	}

	key := MockEmailKey(primaryTo, templateID)
	ttl := 5 * time.Minute

	err = s.client.Set(ctx, key, jsonData, ttl).Err()
	if err != nil {
		return fmt.Errorf("failed to store email in Redis key '%s': %w", key, err)
	}

	log.Printf("Mock email stored in Redis key '%s' (TTL: %v, To: %s, Subject: %s)", key, ttl, strings.Join(to, ", "), subject)
	return nil
}
