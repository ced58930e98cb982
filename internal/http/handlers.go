package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	"fsreport/internal/auth"
	"fsreport/internal/core"
	"fsreport/internal/report"
)

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	health := map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.started).String(),
	}

	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(health)
}

// handleReady performs readiness check with dependency verification
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]any)

	if s.templates == nil {
		checks["templates"] = "failed: templates not loaded"
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["templates"] = "ok"
	}

	if s.entries == nil {
		checks["entry_service"] = "not_configured"
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["entry_service"] = "ok"
	}

	checks["cache"] = map[string]any{
		"report_entries": s.reportCache.Size(),
		"status":         "ok",
	}
	checks["rate_limiter"] = map[string]any{
		"limit_hits": s.rateLimiter.limitHitCount(),
		"status":     "ok",
	}

	response := map[string]any{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	}

	w.WriteHeader(httpStatus)
	_ = json.NewEncoder(w).Encode(response)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if s.templates == nil {
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	now := time.Now()
	type monthOption struct {
		Num      int
		Name     string
		Selected bool
	}
	data := struct {
		SignedIn bool
		Name     string
		Date     string
		Year     int
		Month    int
		Months   []monthOption
	}{
		Date:  now.Format("2006-01-02"),
		Year:  now.Year(),
		Month: int(now.Month()),
	}
	for m := 1; m <= 12; m++ {
		data.Months = append(data.Months, monthOption{
			Num:      m,
			Name:     time.Month(m).String(),
			Selected: m == data.Month,
		})
	}
	if ident, err := auth.FromContext(r.Context()); err == nil {
		data.SignedIn = true
		data.Name = ident.DisplayName()
	}

	if err := s.templates.ExecuteTemplate(w, "index.html", data); err != nil {
		logger := requestLogger(r)
		logger.ErrorContext(r.Context(), "Index template execution failed", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// handleCreateEntry records a new time entry from the form.
func (s *Server) handleCreateEntry(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}

	ident, err := auth.FromContext(r.Context())
	if err != nil {
		UnauthorizedError().Write(w)
		return
	}

	in, err := ParseEntryForm(r.Form)
	if err != nil {
		UnprocessableEntityError(err.Error()).Write(w)
		return
	}

	entry, err := s.entries.CreateEntry(r.Context(), ident, in)
	if err != nil {
		s.writeEntryError(w, r, "create entry", err)
		return
	}

	s.invalidateReports(ident.SubjectID)
	s.structured.LogEntryCreated(r.Context(), entry.ID, entry.Date.Format("2006-01-02"),
		entry.HoursWorked, len(entry.Studies))

	year, month := entry.Date.Year(), int(entry.Date.Month())
	NewHTMXResponse().
		TriggerEntryCreated(year, month).
		TriggerFormReset().
		TriggerSuccessNotification(fmt.Sprintf("Recorded %s hours on %s",
			report.FormatEntryHours(entry.HoursWorked), entry.Date.Format("Jan 2"))).
		BodyHTML(`<div class="success">Entry saved: ` +
			template.HTMLEscapeString(report.FormatEntryHours(entry.HoursWorked)) + ` hours on ` +
			template.HTMLEscapeString(entry.Date.Format("Monday, January 2")) + `</div>`).
		Write(w)
}

// handleDeleteEntry removes one of the caller's entries.
func (s *Server) handleDeleteEntry(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodPost, http.MethodDelete); resp != nil {
		resp.Write(w)
		return
	}
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}

	ident, err := auth.FromContext(r.Context())
	if err != nil {
		UnauthorizedError().Write(w)
		return
	}

	entryID := strings.TrimSpace(r.Form.Get("id"))
	if entryID == "" {
		BadRequestError("Missing entry id").Write(w)
		return
	}

	if err := s.entries.DeleteEntry(r.Context(), ident, entryID); err != nil {
		s.writeEntryError(w, r, "delete entry", err)
		return
	}

	s.invalidateReports(ident.SubjectID)

	NewHTMXResponse().
		TriggerEntryDeleted().
		TriggerSuccessNotification("Entry deleted").
		BodyHTML(`<div class="success">Entry deleted</div>`).
		Write(w)
}

// handleReportPartial renders the report section for the requested period.
func (s *Server) handleReportPartial(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	ident, err := auth.FromContext(r.Context())
	if err != nil {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`<section id="report" class="report"><div class="placeholder">Sign in to see your report</div></section>`))
		return
	}

	p := ParsePeriodParams(r.URL.Query())
	if err := p.Validate(); err != nil {
		UnprocessableEntityError(err.Error()).Write(w)
		return
	}

	rep, err := s.cachedReport(r.Context(), ident, p)
	if err != nil {
		logger := requestLogger(r)
		logger.ErrorContext(r.Context(), "Report error", "error", err, "year", p.Year, "month", p.Month)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`<section id="report" class="report"><div class="placeholder">Could not load the report</div></section>`))
		return
	}

	if s.templates == nil {
		_, _ = w.Write([]byte(`<section id="report" class="report"><div class="placeholder">Total hours: ` +
			template.HTMLEscapeString(report.FormatTotalHours(rep.TotalHours)) + `</div></section>`))
		return
	}

	data := buildReportView(rep, ident.DisplayName())
	if err := s.templates.ExecuteTemplate(w, "report.html", data); err != nil {
		logger := requestLogger(r)
		logger.ErrorContext(r.Context(), "Report template execution failed", "error", err)
		_, _ = w.Write([]byte(`<section id="report" class="report"><div class="placeholder">Could not render the report</div></section>`))
	}
}

// handleReportText serves the plain-text report as a download.
func (s *Server) handleReportText(w http.ResponseWriter, r *http.Request) {
	rep, ident, ok := s.reportForDownload(w, r)
	if !ok {
		return
	}

	text := report.Text(rep, ident.DisplayName(), time.Now())
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+report.TextFilename(rep.Period)+`"`)
	_, _ = w.Write([]byte(text))
}

// handleReportPDF serves the PDF report as a download.
func (s *Server) handleReportPDF(w http.ResponseWriter, r *http.Request) {
	rep, ident, ok := s.reportForDownload(w, r)
	if !ok {
		return
	}

	out, err := report.PDF(rep, ident.DisplayName(), time.Now())
	if err != nil {
		logger := requestLogger(r)
		logger.ErrorContext(r.Context(), "PDF render failed", "error", err, "year", rep.Period.Year, "month", rep.Period.Month)
		http.Error(w, "could not render the report", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+report.PDFFilename(rep.Period)+`"`)
	_, _ = w.Write(out)
}

// handleReportShare redirects to a WhatsApp share link for the report.
func (s *Server) handleReportShare(w http.ResponseWriter, r *http.Request) {
	rep, ident, ok := s.reportForDownload(w, r)
	if !ok {
		return
	}
	http.Redirect(w, r, report.ShareLink(rep, ident.DisplayName(), time.Now()), http.StatusFound)
}

// reportForDownload resolves the identity and period shared by the download
// handlers, writing the error response itself when something is off.
func (s *Server) reportForDownload(w http.ResponseWriter, r *http.Request) (core.Report, auth.Identity, bool) {
	ident, err := auth.FromContext(r.Context())
	if err != nil {
		http.Error(w, "sign in to download reports", http.StatusUnauthorized)
		return core.Report{}, auth.Identity{}, false
	}

	p := ParsePeriodParams(r.URL.Query())
	if err := p.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return core.Report{}, auth.Identity{}, false
	}

	rep, err := s.cachedReport(r.Context(), ident, p)
	if err != nil {
		logger := requestLogger(r)
		logger.ErrorContext(r.Context(), "Report error", "error", err, "year", p.Year, "month", p.Month)
		http.Error(w, "could not build the report", http.StatusInternalServerError)
		return core.Report{}, auth.Identity{}, false
	}
	return rep, ident, true
}

// writeEntryError maps service errors onto HTMX fragments.
func (s *Server) writeEntryError(w http.ResponseWriter, r *http.Request, op string, err error) {
	logger := requestLogger(r)
	switch {
	case auth.IsAuthError(err):
		UnauthorizedError().Write(w)
	case errors.Is(err, core.ErrEntryNotFound):
		NotFoundError("Entry not found").Write(w)
	case isValidationError(err):
		UnprocessableEntityError(err.Error()).Write(w)
	default:
		logger.ErrorContext(r.Context(), "Entry operation failed", "operation", op, "error", err)
		InternalServerError("Something went wrong, try again").Write(w)
	}
}

// isValidationError reports whether err is a rejection of the input rather
// than a failure of the system.
func isValidationError(err error) bool {
	return errors.Is(err, core.ErrEndNotAfterStart) ||
		errors.Is(err, core.ErrZeroDate) ||
		errors.Is(err, core.ErrEmptyParticipant) ||
		strings.Contains(err.Error(), "too long")
}

// Report view model for the HTML partial.
type reportView struct {
	Label        string
	IsYear       bool
	Year         int
	Month        int
	TotalHours   string
	StudiesCount int
	Participated bool
	Entries      []entryRow
	TextURL      string
	PDFURL       string
	ShareURL     string
}

type entryRow struct {
	ID        string
	DateLabel string
	TimeRange string
	Hours     string
	Studies   string
	Comments  string
}

func buildReportView(rep core.Report, name string) reportView {
	v := reportView{
		Label:        rep.Period.Label(),
		IsYear:       rep.Period.Month == 0,
		Year:         rep.Period.Year,
		Month:        rep.Period.Month,
		TotalHours:   report.FormatTotalHours(rep.TotalHours),
		StudiesCount: rep.StudiesCount,
		Participated: rep.Participated,
		TextURL:      reportURL("/reports/text", rep.Period),
		PDFURL:       reportURL("/reports/pdf", rep.Period),
		ShareURL:     reportURL("/reports/share", rep.Period),
	}
	for _, e := range rep.Entries {
		v.Entries = append(v.Entries, entryRow{
			ID:        e.ID,
			DateLabel: e.Date.Format("Monday, Jan 2"),
			TimeRange: e.TimeStarted.Format("3:04 PM") + " - " + e.TimeEnded.Format("3:04 PM"),
			Hours:     report.FormatEntryHours(e.HoursWorked),
			Studies:   strings.Join(e.Participants(), ", "),
			Comments:  e.Comments,
		})
	}
	return v
}

func reportURL(base string, p core.Period) string {
	if p.Month == 0 {
		return fmt.Sprintf("%s?year=%d&scope=year", base, p.Year)
	}
	return fmt.Sprintf("%s?year=%d&month=%d", base, p.Year, p.Month)
}
