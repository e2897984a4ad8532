package media

import (
	"context"
	"errors"
	"strings"
	"time"
)

var ErrValidation = errors.New("validation error")

const defaultSignedURLTTL = 15 * time.Minute

type URLSigner interface {
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
}

type ResolverConfig struct {
	PresignTTL   time.Duration
	PublicPrefix string
}

// Resolver turns the image column of a profile into a URL a client can
// fetch. Absolute URLs pass through; anything else is an object key.
type Resolver struct {
	signer URLSigner
	cfg    ResolverConfig
}

func NewResolver(signer URLSigner, cfg ResolverConfig) *Resolver {
	if cfg.PresignTTL <= 0 {
		cfg.PresignTTL = defaultSignedURLTTL
	}
	cfg.PublicPrefix = strings.TrimSpace(cfg.PublicPrefix)
	return &Resolver{signer: signer, cfg: cfg}
}

func (r *Resolver) Resolve(ctx context.Context, image string) (string, error) {
	image = strings.TrimSpace(image)
	if image == "" || isAbsoluteURL(image) {
		return image, nil
	}

	key := strings.TrimLeft(image, "/")
	if r.cfg.PublicPrefix != "" {
		return strings.TrimRight(r.cfg.PublicPrefix, "/") + "/" + key, nil
	}
	if r.signer == nil {
		return "", errors.New("image signer is not configured")
	}
	return r.signer.PresignGet(ctx, key, r.cfg.PresignTTL)
}

func isAbsoluteURL(v string) bool {
	lower := strings.ToLower(v)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}
