// Package device models the client-side redirect dispatcher as pure
// functions. The embedded page script mirrors this logic exactly; keeping a
// server-side model lets the classification precedence and the decision
// table be unit tested without a browser runtime.
package device

import (
	"fmt"
	"strings"

	"github.com/infotik/link-gateway/internal/preview"
)

// Class is the device population a user agent belongs to.
type Class string

// Device classes, in classification precedence order.
const (
	Android Class = "android"
	IOS     Class = "ios"
	Web     Class = "web"
)

// ActionKind discriminates the redirect actions.
type ActionKind string

// Redirect action kinds.
const (
	OpenDeepLink ActionKind = "open_deep_link"
	NavigateTo   ActionKind = "navigate_to"
	NoOp         ActionKind = "no_op"
)

// Action is the navigation outcome for one page load. Target is empty for
// NoOp.
type Action struct {
	Kind   ActionKind
	Target string
}

// Links holds the deployment-fixed destinations the dispatcher chooses
// between.
type Links struct {
	// WebsiteURL is the marketing site root desktop visitors land on.
	WebsiteURL string
	// AppScheme is the custom URI scheme registered to the native app.
	AppScheme string
	// AppPackage is the Android package name the intent is addressed to.
	AppPackage string
	// StoreURL is the app-store listing the OS falls back to when the app
	// is not installed.
	StoreURL string
}

// Classify maps a raw user-agent string to a device class. The Android check
// runs first: an agent carrying both Android and iPhone-like tokens is
// Android. The MSStream token masks legacy IE mobile agents that spoof iOS
// signatures.
func Classify(userAgent string) Class {
	if strings.Contains(strings.ToLower(userAgent), "android") {
		return Android
	}
	if (strings.Contains(userAgent, "iPad") ||
		strings.Contains(userAgent, "iPhone") ||
		strings.Contains(userAgent, "iPod")) &&
		!strings.Contains(userAgent, "MSStream") {
		return IOS
	}
	return Web
}

// Decide selects the navigation outcome for a classified device. iOS is a
// deliberate no-op: universal-link handling belongs to the OS, and issuing a
// navigation here would break it.
func Decide(class Class, ref preview.ContentRef, links Links) Action {
	switch class {
	case Android:
		return Action{Kind: OpenDeepLink, Target: IntentURI(ref, links)}
	case Web:
		return Action{Kind: NavigateTo, Target: links.WebsiteURL}
	default:
		return Action{Kind: NoOp}
	}
}

// IntentURI builds the Android intent URI for ref. The OS resolves it to the
// installed app or, failing that, to the browser fallback URL; install-state
// detection is not this service's concern.
func IntentURI(ref preview.ContentRef, links Links) string {
	return fmt.Sprintf(
		"intent://%s/%s#Intent;scheme=%s;package=%s;S.browser_fallback_url=%s;end",
		ref.Kind, ref.ID, links.AppScheme, links.AppPackage, links.StoreURL,
	)
}
