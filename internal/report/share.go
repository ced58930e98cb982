package report

import (
	"net/url"
	"strings"
	"time"

	"fsreport/internal/core"
)

// ShareLink wraps the text report in a WhatsApp share URL. The recipient is
// left blank so the sender picks the chat.
func ShareLink(rep core.Report, userName string, now time.Time) string {
	text := Text(rep, userName, now)
	// QueryEscape emits "+" for spaces, which WhatsApp shows literally.
	escaped := strings.ReplaceAll(url.QueryEscape(text), "+", "%20")
	return "https://wa.me/?text=" + escaped
}
