package noop

import (
	"context"
	"log"

	"billdoc/internal/email"
	"billdoc/internal/port"
)

type noopSender struct{}

// NewNoopSender creates a no-op EmailSender that logs notices to stdout.
func NewNoopSender() port.EmailSender {
	return &noopSender{}
}

func (s *noopSender) SendGenerationNotice(_ context.Context, toEmail string, notice port.GenerationNotice) error {
	log.Printf("[NOOP EMAIL] %s -> %s: %s", email.NoticeSubject(notice), toEmail, notice.DownloadURL)
	return nil
}
