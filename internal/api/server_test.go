package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/infotik/link-gateway/internal/config"
	"github.com/infotik/link-gateway/internal/device"
	"github.com/infotik/link-gateway/internal/images/urltemplate"
	"github.com/infotik/link-gateway/internal/preview"
	"github.com/infotik/link-gateway/internal/render"
)

func newTestConfig() config.Config {
	return config.Config{
		Server: config.ServerConfig{Port: 8080},
		Upstream: config.UpstreamConfig{
			TimeoutSeconds: 2,
		},
		Links: config.LinksConfig{
			WebsiteURL:       "https://www.infotik.co",
			CanonicalBaseURL: "https://app.infotik.co",
			TwitterDomain:    "app.infotik.co",
			AppScheme:        "infotik.co",
			AppPackage:       "com.zeeshan_raza.infotik",
			StoreURL:         "https://play.google.com/store/apps/details?id=com.zeeshan_raza.infotik",
			DiscordInviteURL: "https://discord.gg/infotik",
		},
	}
}

func newTestServer(t *testing.T, upstreamURL string) *Server {
	t.Helper()

	cfg := newTestConfig()
	images, err := urltemplate.New("https://cdn.test/thumbnail/{object}")
	require.NoError(t, err)

	resolver, err := preview.NewResolver(
		&http.Client{Timeout: 2 * time.Second},
		images,
		preview.ResolverConfig{BaseURL: upstreamURL},
		nil,
	)
	require.NoError(t, err)

	renderer := render.New(render.Config{
		CanonicalBaseURL: cfg.Links.CanonicalBaseURL,
		TwitterDomain:    cfg.Links.TwitterDomain,
		Links: device.Links{
			WebsiteURL: cfg.Links.WebsiteURL,
			AppScheme:  cfg.Links.AppScheme,
			AppPackage: cfg.Links.AppPackage,
			StoreURL:   cfg.Links.StoreURL,
		},
	})

	return NewServer(resolver, renderer, cfg, nil)
}

func newUpstream(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	upstream := httptest.NewServer(handler)
	t.Cleanup(upstream.Close)
	return upstream
}

func TestServer_VideoPreview_Success(t *testing.T) {
	t.Parallel()

	upstream := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/posts/abc123", r.URL.Path)
		_, _ = w.Write([]byte(`{"statusCode":200,"data":{"user":{"displayName":"Jane"},"description":"A clip","thumbnailObjectName":"t1.jpg"}}`))
	})
	server := newTestServer(t, upstream.URL)

	req := httptest.NewRequest(http.MethodGet, "/video/abc123", nil)
	rec := httptest.NewRecorder()

	server.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	body := rec.Body.String()
	require.Contains(t, body, `<meta property="og:title" content="Jane">`)
	require.Contains(t, body, `<meta property="og:description" content="A clip">`)
	require.Contains(t, body, `<meta property="og:image" content="https://cdn.test/thumbnail/t1.jpg">`)
	require.Contains(t, body, `<meta property="og:url" content="https://app.infotik.co/video/abc123">`)
}

func TestServer_PulsePreview_UpstreamNotFound(t *testing.T) {
	t.Parallel()

	upstream := newUpstream(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	})
	server := newTestServer(t, upstream.URL)

	req := httptest.NewRequest(http.MethodGet, "/pulse/xyz", nil)
	rec := httptest.NewRecorder()

	server.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	require.Contains(t, body, "<title>Pulse not found</title>")
	require.Contains(t, body, `<meta property="og:description" content="Pulse not found">`)
	require.NotContains(t, body, "og:image")
}

func TestServer_DeprecatedAPIAlias_ServesVideo(t *testing.T) {
	t.Parallel()

	upstream := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/posts/abc123", r.URL.Path)
		_, _ = w.Write([]byte(`{"statusCode":200,"data":{"user":{"displayName":"Jane"},"description":"A clip"}}`))
	})
	server := newTestServer(t, upstream.URL)

	req := httptest.NewRequest(http.MethodGet, "/api/abc123", nil)
	rec := httptest.NewRecorder()

	server.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	require.Contains(t, body, `<meta property="og:type" content="video.other">`)
	require.Contains(t, body, `<meta property="og:title" content="Jane">`)
}

func TestServer_Root_RedirectsToWebsite(t *testing.T) {
	t.Parallel()

	server := newTestServer(t, "https://unreachable.invalid")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	server.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "https://www.infotik.co", rec.Header().Get("Location"))
	require.NotContains(t, rec.Body.String(), "og:title")
}

func TestServer_Discord_RedirectsToInvite(t *testing.T) {
	t.Parallel()

	server := newTestServer(t, "https://unreachable.invalid")

	req := httptest.NewRequest(http.MethodGet, "/discord", nil)
	rec := httptest.NewRecorder()

	server.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "https://discord.gg/infotik", rec.Header().Get("Location"))
}

func TestServer_UnknownPath_404(t *testing.T) {
	t.Parallel()

	server := newTestServer(t, "https://unreachable.invalid")

	req := httptest.NewRequest(http.MethodGet, "/nope/really/nope", nil)
	rec := httptest.NewRecorder()

	server.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_Healthz(t *testing.T) {
	t.Parallel()

	server := newTestServer(t, "https://unreachable.invalid")

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()

	server.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "ok")
}

func TestServer_SetsRequestID(t *testing.T) {
	t.Parallel()

	server := newTestServer(t, "https://unreachable.invalid")

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()

	server.Handler().ServeHTTP(rec, req)

	require.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestServer_UpstreamDown_StillServesDocument(t *testing.T) {
	t.Parallel()

	// No upstream at all; the preview must still be a complete page.
	server := newTestServer(t, "http://127.0.0.1:0")

	req := httptest.NewRequest(http.MethodGet, "/video/abc123", nil)
	rec := httptest.NewRecorder()

	server.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "<title>Video not found</title>")
	require.Contains(t, rec.Body.String(), "redirectBasedOnDevice")
}
