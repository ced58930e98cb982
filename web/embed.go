// Package web embeds the HTML templates and static assets served by the
// application.
package web

import "embed"

// TemplatesFS holds the server-rendered pages and HTMX partials.
//
//go:embed templates/*.html
var TemplatesFS embed.FS

// StaticFS holds stylesheets and other static assets.
//
//go:embed static/*
var StaticFS embed.FS
