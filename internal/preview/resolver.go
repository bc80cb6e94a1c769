package preview

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/infotik/link-gateway/internal/telemetry"
)

// ResolverConfig captures the upstream content API parameters.
type ResolverConfig struct {
	// BaseURL is the content API root, e.g. https://server.infotik.co.
	BaseURL string
	// PostsPath and PulsesPath override the default collection path
	// segments. Legacy deployments use "pulse" instead of "pulses".
	PostsPath  string
	PulsesPath string
	// APIKey, when set, is sent as a bearer token on every lookup.
	APIKey string
	// Timeout bounds a single upstream call when the provided client has
	// no timeout of its own.
	Timeout time.Duration
}

// Resolver fetches canonical metadata for a piece of content from the
// upstream content API. Resolve is total: every failure mode collapses into
// the kind's fixed not-found payload, so callers always receive a fully
// populated Metadata and must not branch on whether resolution succeeded.
type Resolver struct {
	client *http.Client
	images ImageSource
	cfg    ResolverConfig
	logger *zap.Logger
}

// NewResolver constructs a Resolver. A nil client gets a default one bound
// by cfg.Timeout; a nil logger is replaced with a no-op logger.
func NewResolver(client *http.Client, images ImageSource, cfg ResolverConfig, logger *zap.Logger) (*Resolver, error) {
	if images == nil {
		return nil, fmt.Errorf("image source is required")
	}
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, fmt.Errorf("upstream base URL is required")
	}
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{
		client: client,
		images: images,
		cfg:    cfg,
		logger: logger,
	}, nil
}

// Resolve looks up the content behind ref and maps it to preview metadata.
// It issues exactly one upstream call, wired to ctx so a dropped client
// abandons the in-flight request.
func (r *Resolver) Resolve(ctx context.Context, ref ContentRef) Metadata {
	profile := Profile(ref.Kind)

	start := time.Now()
	env, err := r.fetch(ctx, ref)
	telemetry.ObserveUpstreamRequest(string(ref.Kind), time.Since(start))
	if err != nil {
		r.logger.Warn("upstream lookup failed",
			zap.String("kind", string(ref.Kind)),
			zap.String("id", ref.ID),
			zap.Error(err),
		)
		telemetry.ObservePreview(string(ref.Kind), telemetry.OutcomeNotFound)
		return NotFound(ref.Kind)
	}
	if env.StatusCode != http.StatusOK {
		r.logger.Debug("upstream rejected lookup",
			zap.String("kind", string(ref.Kind)),
			zap.String("id", ref.ID),
			zap.Int("status_code", env.StatusCode),
		)
		telemetry.ObservePreview(string(ref.Kind), telemetry.OutcomeNotFound)
		return NotFound(ref.Kind)
	}
	telemetry.ObservePreview(string(ref.Kind), telemetry.OutcomeOK)

	title := BrandFallbackTitle
	if env.Data.User != nil && env.Data.User.DisplayName != "" {
		title = env.Data.User.DisplayName
	}

	description := env.Data.Description
	if profile.UsesContentField {
		description = env.Data.Content
	}

	objectName := env.Data.ThumbnailObjectName
	if profile.UsesProfilePic {
		objectName = env.Data.ProfilePicObjectName
	}
	thumbnail := ""
	if objectName != "" {
		thumbnail = r.images.Resolve(ctx, objectName)
	}

	return Metadata{
		Title:       title,
		Description: description,
		Thumbnail:   thumbnail,
	}
}

// LookupURL builds the upstream URL for ref. The id is path-escaped since it
// arrives verbatim from the inbound request path.
func (r *Resolver) LookupURL(ref ContentRef) string {
	collection := Profile(ref.Kind).Collection
	switch ref.Kind {
	case KindVideo:
		if r.cfg.PostsPath != "" {
			collection = r.cfg.PostsPath
		}
	case KindPulse:
		if r.cfg.PulsesPath != "" {
			collection = r.cfg.PulsesPath
		}
	}
	return fmt.Sprintf("%s/%s/%s",
		strings.TrimRight(r.cfg.BaseURL, "/"),
		collection,
		url.PathEscape(ref.ID),
	)
}

func (r *Resolver) fetch(ctx context.Context, ref ContentRef) (upstreamEnvelope, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.LookupURL(ref), nil)
	if err != nil {
		return upstreamEnvelope{}, fmt.Errorf("build lookup request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if r.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+r.cfg.APIKey)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return upstreamEnvelope{}, fmt.Errorf("upstream request: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			r.logger.Debug("close upstream body", zap.Error(closeErr))
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return upstreamEnvelope{}, fmt.Errorf("upstream status %d", resp.StatusCode)
	}

	var env upstreamEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return upstreamEnvelope{}, fmt.Errorf("decode upstream body: %w", err)
	}
	return env, nil
}
