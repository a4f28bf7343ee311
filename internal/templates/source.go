package templates

import (
	"fmt"
	"path"
	"strings"

	"billdoc/internal/config"
	"billdoc/internal/domain"
	"billdoc/internal/odt"
	"billdoc/internal/port"
)

// Extension is the only accepted template file extension.
const Extension = ".odt"

// ValidateName rejects names that could escape the template root.
func ValidateName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("%w: empty", domain.ErrInvalidTemplateName)
	case strings.ContainsAny(name, `/\`), strings.Contains(name, ".."):
		return fmt.Errorf("%w: %q contains a path separator", domain.ErrInvalidTemplateName, name)
	case path.Ext(name) != Extension || name == Extension:
		return fmt.Errorf("%w: %q must end in %s", domain.ErrInvalidTemplateName, name, Extension)
	}
	return nil
}

// checkArchive confirms the loaded bytes are a usable template.
func checkArchive(name string, data []byte) error {
	if err := odt.Validate(data); err != nil {
		return fmt.Errorf("%w: %s: %w", domain.ErrTemplateInvalid, name, err)
	}
	return nil
}

// NewSource builds the configured template source, wrapped in a cache when the cache
// size is positive.
func NewSource(cfg *config.TemplateConfig, storage port.ObjectStorage, onHit, onMiss func()) (port.TemplateSource, error) {
	var src port.TemplateSource
	switch cfg.Source {
	case config.TemplateSourceFile:
		src = NewFileSource(cfg.Dir)
	case config.TemplateSourceS3:
		if storage == nil {
			return nil, fmt.Errorf("template source s3 requires object storage")
		}
		src = NewS3Source(storage, cfg.Bucket, cfg.Prefix)
	default:
		return nil, fmt.Errorf("unknown template source: %s", cfg.Source)
	}

	if cfg.CacheSize <= 0 {
		return src, nil
	}
	return NewCachedSource(src, cfg.CacheSize, cfg.CacheTTL, onHit, onMiss), nil
}
