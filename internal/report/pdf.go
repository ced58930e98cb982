package report

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"

	"fsreport/internal/core"
)

// PDF renders the report as an A4 document mirroring the printed form:
// title, name and period lines, three summary tiles, the participation
// checkbox, the entry list, and a generation footer.
func PDF(rep core.Report, userName string, now time.Time) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Field Service Report", false)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 10, "Field Service Report", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.SetTextColor(90, 90, 90)
	pdf.CellFormat(0, 6, rep.Period.Label(), "", 1, "C", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
	pdf.Ln(4)

	labelLine(pdf, "Name:", userName)
	labelLine(pdf, periodLabel(rep.Period)+":", rep.Period.Label())
	pdf.Ln(6)

	// Summary tiles.
	const (
		tileW = 60
		tileH = 18
		gap   = 5
	)
	x, y := pdf.GetX(), pdf.GetY()
	tile(pdf, x, y, tileW, tileH, "Total Hours", FormatTotalHours(rep.TotalHours))
	tile(pdf, x+tileW+gap, y, tileW, tileH, "Bible Studies", fmt.Sprintf("%d", rep.StudiesCount))
	tile(pdf, x+2*(tileW+gap), y, tileW, tileH, "Participated", yesNo(rep.Participated))
	pdf.SetXY(x, y+tileH+6)

	// Participation checkbox.
	cy := pdf.GetY()
	pdf.Rect(x, cy, 5, 5, "D")
	if rep.Participated {
		pdf.SetFillColor(40, 40, 40)
		pdf.Rect(x+1, cy+1, 3, 3, "F")
	}
	pdf.SetXY(x+8, cy)
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 5, "I shared in any form of the ministry during the month", "", 1, "L", false, 0, "")
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, "Detailed Entries", "", 1, "L", false, 0, "")

	if len(rep.Entries) == 0 {
		pdf.SetFont("Helvetica", "I", 10)
		pdf.SetTextColor(120, 120, 120)
		pdf.CellFormat(0, 8, "No entries recorded for this period", "", 1, "C", false, 0, "")
		pdf.SetTextColor(0, 0, 0)
	}
	for _, e := range rep.Entries {
		entryBlock(pdf, e)
	}

	pdf.Ln(6)
	pdf.SetDrawColor(180, 180, 180)
	lx, ly := pdf.GetX(), pdf.GetY()
	pdf.Line(lx, ly, lx+180, ly)
	pdf.Ln(3)
	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(120, 120, 120)
	pdf.CellFormat(0, 5, "Report generated on "+Timestamp(now), "", 1, "C", false, 0, "")

	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func labelLine(pdf *fpdf.Fpdf, label, value string) {
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(30, 7, label, "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 7, value, "", 1, "L", false, 0, "")
}

func tile(pdf *fpdf.Fpdf, x, y, w, h float64, label, value string) {
	pdf.SetDrawColor(160, 160, 160)
	pdf.Rect(x, y, w, h, "D")
	pdf.SetXY(x, y+3)
	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(110, 110, 110)
	pdf.CellFormat(w, 5, label, "", 2, "C", false, 0, "")
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetX(x)
	pdf.CellFormat(w, 8, value, "", 0, "C", false, 0, "")
}

func entryBlock(pdf *fpdf.Fpdf, e core.TimeEntry) {
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(110, 6, e.Date.Format("Monday, Jan 2"), "", 0, "L", false, 0, "")
	pdf.CellFormat(0, 6, FormatEntryHours(e.HoursWorked)+" hrs", "", 1, "R", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(110, 110, 110)
	pdf.CellFormat(0, 5, clock(e.TimeStarted)+" - "+clock(e.TimeEnded), "", 1, "L", false, 0, "")
	if names := e.Participants(); len(names) > 0 {
		pdf.CellFormat(0, 5, "Bible studies: "+strings.Join(names, ", "), "", 1, "L", false, 0, "")
	}
	if e.Comments != "" {
		pdf.SetFont("Helvetica", "I", 9)
		pdf.MultiCell(0, 5, e.Comments, "", "L", false)
	}
	pdf.SetTextColor(0, 0, 0)
	pdf.Ln(2)
}
