package ai

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"

	"hireflow/internal/config"
)

// Resolver turns server configuration plus an optional per-request key into
// a Completer. A nil result is the "no credential" branch callers handle.
type Resolver struct {
	cfg    config.AIConfig
	base   Completer
	closer io.Closer
	logger *log.Logger
}

func NewResolver(ctx context.Context, cfg config.AIConfig, logger *log.Logger) *Resolver {
	if logger == nil {
		logger = log.Default()
	}
	r := &Resolver{cfg: cfg, logger: logger}

	switch cfg.Provider {
	case config.ProviderVertex:
		p, err := NewVertex(ctx, cfg)
		if err != nil {
			if !errors.Is(err, ErrNoCredential) {
				logger.Printf("ai_resolver provider=vertex status=unavailable err=%v", err)
			}
			break
		}
		r.base, r.closer = p, p
	default:
		p, err := NewOpenAI(cfg, cfg.APIKey)
		if err != nil {
			if !errors.Is(err, ErrNoCredential) {
				logger.Printf("ai_resolver provider=openai status=unavailable err=%v", err)
			}
			break
		}
		r.base = p
	}

	if r.base == nil {
		logger.Printf("ai_resolver status=no_credential provider=%s", cfg.Provider)
	}
	return r
}

// NewStaticResolver always resolves to c; used by tools and tests.
func NewStaticResolver(c Completer) *Resolver {
	return &Resolver{base: c, logger: log.Default()}
}

// Resolve returns the Completer for one call. A non-empty override key is
// used against the OpenAI-compatible endpoint for that call only.
func (r *Resolver) Resolve(override string) Completer {
	if r == nil {
		return nil
	}
	if key := strings.TrimSpace(override); key != "" && r.cfg.BaseURL != "" {
		p, err := NewOpenAI(r.cfg, key)
		if err == nil {
			return p
		}
		r.logger.Printf("ai_resolver override status=rejected err=%v", err)
	}
	if r.base == nil {
		return nil
	}
	return r.base
}

// HasDefault reports whether a server-side credential is configured.
func (r *Resolver) HasDefault() bool {
	return r != nil && r.base != nil
}

func (r *Resolver) Close() error {
	if r == nil || r.closer == nil {
		return nil
	}
	return r.closer.Close()
}
