package service

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/Adna-Araujo/Sistema-de-Reservas/internal/model"
)

func reportRows() []model.DailyCount {
	return []model.DailyCount{
		{Date: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), Count: 3},
		{Date: time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC), Count: 1},
	}
}

func TestWriteDailyReportCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteDailyReportCSV(&buf, reportRows()); err != nil {
		t.Fatal(err)
	}
	want := "Data,Total de Reservas\n2024-06-01,3\n2024-06-02,1\n"
	if buf.String() != want {
		t.Fatalf("csv = %q, want %q", buf.String(), want)
	}

	buf.Reset()
	if err := WriteDailyReportCSV(&buf, nil); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "Data,Total de Reservas\n" {
		t.Fatalf("empty report should still carry the header, got %q", buf.String())
	}
}

func TestWriteDailyReportPDF(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteDailyReportPDF(&buf, "Relatório de Reservas", reportRows()); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(buf.String(), "%PDF-") {
		t.Fatalf("output is not a PDF: %q", buf.String()[:16])
	}
}

func TestPassSigner(t *testing.T) {
	p := NewPassSigner("secret")
	r := model.Reservation{ID: 42, RoomID: 1, StartTime: time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)}

	payload := p.Payload(r)
	if !strings.HasPrefix(payload, "reservation:42|room:1|2024-06-01T09:00:00Z|") {
		t.Fatalf("payload = %q", payload)
	}
	if !p.Verify(payload) {
		t.Fatal("own payload must verify")
	}
	if p.Verify(strings.Replace(payload, "room:1", "room:2", 1)) {
		t.Fatal("tampered payload verified")
	}
	if NewPassSigner("other").Verify(payload) {
		t.Fatal("payload verified with the wrong secret")
	}

	png, err := p.PNG(r, 0)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(png, []byte("\x89PNG")) {
		t.Fatal("QR output is not a PNG")
	}
}
