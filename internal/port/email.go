package port

import "context"

// GenerationNotice is the content of a "notice generated" email.
type GenerationNotice struct {
	ServicePeriod string
	ChargedAmount string
	AmountInWords string
	DownloadURL   string
}

// EmailSender defines the contract for sending emails.
type EmailSender interface {
	SendGenerationNotice(ctx context.Context, toEmail string, notice GenerationNotice) error
}
