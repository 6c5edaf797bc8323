// Package templates embeds the HTML templates served by the web package.
package templates

import "embed"

//go:embed *.html partials/*.html
var FS embed.FS
