package templates

import "embed"

// EmailFS contains the HTML email templates rendered by the notifier.
//
//go:embed email/*.html
var EmailFS embed.FS
