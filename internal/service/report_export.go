package service

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/phpdave11/gofpdf"

	"github.com/Adna-Araujo/Sistema-de-Reservas/internal/model"
)

// DailyReportHeader is the first CSV row of the daily report.
var DailyReportHeader = []string{"Data", "Total de Reservas"}

const reportDateLayout = "2006-01-02"

// WriteDailyReportCSV writes the header row and one YYYY-MM-DD,count
// line per day.
func WriteDailyReportCSV(w io.Writer, rows []model.DailyCount) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(DailyReportHeader); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write([]string{r.Date.UTC().Format(reportDateLayout), strconv.Itoa(r.Count)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteDailyReportPDF renders the report as a one-table A4 document.
func WriteDailyReportPDF(w io.Writer, title string, rows []model.DailyCount) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(title, true)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, tr(title))
	pdf.Ln(14)

	pdf.SetFont("Arial", "B", 12)
	pdf.SetFillColor(230, 230, 230)
	pdf.CellFormat(60, 8, tr(DailyReportHeader[0]), "1", 0, "L", true, 0, "")
	pdf.CellFormat(50, 8, tr(DailyReportHeader[1]), "1", 1, "R", true, 0, "")

	pdf.SetFont("Arial", "", 12)
	total := 0
	for _, r := range rows {
		pdf.CellFormat(60, 8, r.Date.UTC().Format(reportDateLayout), "1", 0, "L", false, 0, "")
		pdf.CellFormat(50, 8, strconv.Itoa(r.Count), "1", 1, "R", false, 0, "")
		total += r.Count
	}
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(60, 8, "Total", "1", 0, "L", false, 0, "")
	pdf.CellFormat(50, 8, strconv.Itoa(total), "1", 1, "R", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return fmt.Errorf("render report pdf: %w", err)
	}
	_, err := w.Write(buf.Bytes())
	return err
}
