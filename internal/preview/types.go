// Package preview defines the content types and metadata resolution logic
// shared across the gateway.
package preview

// ContentKind identifies the kind of content a share link points at.
type ContentKind string

// Content kinds addressable by the gateway.
const (
	KindVideo ContentKind = "video"
	KindPulse ContentKind = "pulse"
)

// ContentRef identifies a single piece of content. It is built per request
// from the URL path and never persisted.
type ContentRef struct {
	Kind ContentKind
	ID   string
}

// Metadata is the social-preview payload embedded into the rendered
// document. All fields are always populated; Thumbnail may be the empty
// string, meaning no image is available.
type Metadata struct {
	Title       string
	Description string
	Thumbnail   string
}

// BrandFallbackTitle is used when a success payload carries no author
// display name.
const BrandFallbackTitle = "Infotik"

// KindProfile captures the per-kind constants that differ between videos
// and pulses: where to look the content up, which upstream fields carry the
// text and thumbnail, and how the document describes the content to
// crawlers.
type KindProfile struct {
	// Collection is the default upstream collection path segment.
	Collection string
	// OGType is the Open Graph type token emitted for this kind.
	OGType string
	// NotFoundLabel is both title and description of the fallback payload.
	NotFoundLabel string
	// UsesContentField selects data.content over data.description as the
	// free-text source.
	UsesContentField bool
	// UsesProfilePic selects data.profilePicObjectName over
	// data.thumbnailObjectName as the thumbnail object key.
	UsesProfilePic bool
}

var kindProfiles = map[ContentKind]KindProfile{
	KindVideo: {
		Collection:    "posts",
		OGType:        "video.other",
		NotFoundLabel: "Video not found",
	},
	KindPulse: {
		Collection:       "pulses",
		OGType:           "article",
		NotFoundLabel:    "Pulse not found",
		UsesContentField: true,
		UsesProfilePic:   true,
	},
}

// Profile returns the profile for the given kind. Unknown kinds map to the
// video profile so a miswired route still degrades instead of panicking.
func Profile(kind ContentKind) KindProfile {
	if p, ok := kindProfiles[kind]; ok {
		return p
	}
	return kindProfiles[KindVideo]
}

// NotFound returns the fixed fallback payload for the given kind.
func NotFound(kind ContentKind) Metadata {
	label := Profile(kind).NotFoundLabel
	return Metadata{Title: label, Description: label, Thumbnail: ""}
}

// upstreamEnvelope is the raw shape returned by the content API. It is not
// owned by this service and is treated as untrusted input.
type upstreamEnvelope struct {
	StatusCode int          `json:"statusCode"`
	Data       upstreamData `json:"data"`
}

type upstreamData struct {
	User                 *upstreamUser `json:"user"`
	Description          string        `json:"description"`
	Content              string        `json:"content"`
	ThumbnailObjectName  string        `json:"thumbnailObjectName"`
	ProfilePicObjectName string        `json:"profilePicObjectName"`
}

type upstreamUser struct {
	DisplayName string `json:"displayName"`
}
