package email

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/zunayedTheCreator/property-prospect-server/internal/config"
)

// JournalEntry is one line of the email journal written by FileEmailSender.
type JournalEntry struct {
	SentAt     time.Time `json:"sent_at"`
	From       string    `json:"from"`
	To         []string  `json:"to"`
	Subject    string    `json:"subject"`
	TemplateID string    `json:"template_id,omitempty"`
	Raw        string    `json:"raw"`
}

// FileEmailSender appends every status email to a JSON-lines journal, so a
// developer can see which buyer got which purchase update without SMTP.
type FileEmailSender struct {
	mu   sync.Mutex
	path string
	from string
}

// NewFileEmailSender creates the journal's directory if needed.
func NewFileEmailSender(filePath string, cfg *config.Config) (Sender, error) {
	filePath = strings.TrimSpace(filePath)
	if filePath == "" {
		return nil, fmt.Errorf("email journal path cannot be empty")
	}
	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create email journal directory %q: %w", dir, err)
	}
	return &FileEmailSender{path: filePath, from: cfg.SmtpFromAddress}, nil
}

func (s *FileEmailSender) Send(ctx context.Context, to []string, subject string, rawMessage []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	line, err := json.Marshal(JournalEntry{
		SentAt:     time.Now().UTC(),
		From:       s.from,
		To:         to,
		Subject:    subject,
		TemplateID: HeaderValue(rawMessage, TemplateHeader),
		Raw:        string(rawMessage),
	})
	if err != nil {
		return fmt.Errorf("encode journal entry: %w", err)
	}
	line = append(line, '\n')

	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open email journal: %w", err)
	}
	defer file.Close()

	if _, err := file.Write(line); err != nil {
		return fmt.Errorf("append to email journal: %w", err)
	}
	log.Printf("Journaled %q email to %v in %s", subject, to, s.path)
	return nil
}
