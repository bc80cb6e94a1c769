// Package render assembles resolved metadata into the preview document
// served to crawlers and browsers.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"github.com/infotik/link-gateway/internal/device"
	"github.com/infotik/link-gateway/internal/preview"
)

//go:embed templates/*.html
var templateFS embed.FS

// Config holds the deployment-fixed values interpolated into every
// document.
type Config struct {
	// CanonicalBaseURL is the public base the share links live under,
	// e.g. https://app.infotik.co.
	CanonicalBaseURL string
	// TwitterDomain is the bare domain emitted in the twitter:domain tag.
	TwitterDomain string
	// Links feeds the embedded dispatch script.
	Links device.Links
}

// Renderer produces the preview document. Rendering is deterministic and
// side-effect free; every dynamic field passes through html/template's
// contextual escaping before it reaches the page.
type Renderer struct {
	tmpl *template.Template
	cfg  Config
}

// New parses the embedded document template.
func New(cfg Config) *Renderer {
	tmpl := template.Must(template.ParseFS(templateFS, "templates/preview.html"))
	return &Renderer{tmpl: tmpl, cfg: cfg}
}

type pageData struct {
	Title         string
	Description   string
	Thumbnail     string
	CanonicalURL  string
	OGType        string
	TwitterDomain string
	IntentURI     string
	WebsiteURL    string
}

// Render builds the document for ref carrying meta. The returned bytes are
// a complete HTML page: crawler meta tags plus the one-shot device dispatch
// script with the content's deep link interpolated.
func (r *Renderer) Render(ref preview.ContentRef, meta preview.Metadata) ([]byte, error) {
	data := pageData{
		Title:         meta.Title,
		Description:   meta.Description,
		Thumbnail:     meta.Thumbnail,
		CanonicalURL:  r.CanonicalURL(ref),
		OGType:        preview.Profile(ref.Kind).OGType,
		TwitterDomain: r.cfg.TwitterDomain,
		IntentURI:     device.IntentURI(ref, r.cfg.Links),
		WebsiteURL:    r.cfg.Links.WebsiteURL,
	}

	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("execute preview template: %w", err)
	}
	return buf.Bytes(), nil
}

// CanonicalURL returns the public share URL for ref.
func (r *Renderer) CanonicalURL(ref preview.ContentRef) string {
	return fmt.Sprintf("%s/%s/%s", r.cfg.CanonicalBaseURL, ref.Kind, ref.ID)
}
