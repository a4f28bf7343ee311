package port

import "context"

// TemplateSource loads notice template archives by name.
type TemplateSource interface {
	Load(ctx context.Context, name string) ([]byte, error)
}
