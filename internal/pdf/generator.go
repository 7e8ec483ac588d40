package pdf

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/nurpe/rodify-dispatch/internal/model"
)

type Generator struct {
	fontName string
}

func NewGenerator() *Generator {
	return &Generator{fontName: "Helvetica"}
}

// Generate renders a single-page service receipt with the lifecycle history.
func (g *Generator) Generate(receipt model.ServiceReceipt) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	svc := receipt.Service

	pdf.SetFont(g.fontName, "B", 16)
	pdf.CellFormat(0, 10, tr("Rodify - Comprobante de servicio"), "", 1, "C", false, 0, "")
	pdf.SetFont(g.fontName, "", 11)
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("Servicio %s del %s", svc.Code, formatDateTime(svc.CreatedAt))), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	addBlock(pdf, g.fontName, tr, "Cliente", []string{
		receipt.Customer.Name,
		fmt.Sprintf("Teléfono: %s", safeValue(receipt.Customer.Phone)),
	})
	pdf.Ln(2)

	techLines := []string{"Sin asignar"}
	if receipt.Technician != nil {
		techLines = []string{
			receipt.Technician.Name,
			fmt.Sprintf("Teléfono: %s", safeValue(receipt.Technician.Phone)),
		}
	}
	addBlock(pdf, g.fontName, tr, "Técnico", techLines)
	pdf.Ln(2)

	addBlock(pdf, g.fontName, tr, "Detalle", []string{
		fmt.Sprintf("Tipo de servicio: %s", svc.ServiceType),
		fmt.Sprintf("Zona: %s", svc.Zone),
		fmt.Sprintf("Dirección: %s", safePtr(svc.Address)),
		fmt.Sprintf("Ubicación: %.5f, %.5f", svc.Lat, svc.Lng),
		fmt.Sprintf("Estado: %s", svc.Status),
		fmt.Sprintf("Método de pago: %s", safeValue(svc.PaymentMethod)),
		fmt.Sprintf("Notas: %s", safePtr(svc.Notes)),
	})
	pdf.Ln(2)

	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 8, tr(fmt.Sprintf("Precio cotizado: %s %s", formatAmount(svc.QuotedPrice), receipt.Currency)), "", 1, "R", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 8, tr("Historial"), "", 1, "L", false, 0, "")

	colWidths := []float64{45, 35, 100}
	drawTableRow(pdf, g.fontName, tr, []string{"Fecha", "Estado", "Notas"}, colWidths, true)
	for _, event := range receipt.Events {
		drawTableRow(pdf, g.fontName, tr, []string{
			formatDateTime(event.CreatedAt),
			string(event.Status),
			safePtr(event.Notes),
		}, colWidths, false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func addBlock(pdf *gofpdf.Fpdf, fontName string, tr func(string) string, title string, lines []string) {
	pdf.SetFont(fontName, "B", 11)
	pdf.CellFormat(0, 6, tr(title), "", 1, "L", false, 0, "")
	pdf.SetFont(fontName, "", 10)
	for _, line := range lines {
		pdf.MultiCell(0, 5, tr(line), "", "L", false)
	}
}

func drawTableRow(pdf *gofpdf.Fpdf, fontName string, tr func(string) string, cols []string, widths []float64, header bool) {
	style := ""
	if header {
		style = "B"
	}
	pdf.SetFont(fontName, style, 10)
	for i, col := range cols {
		pdf.CellFormat(widths[i], 8, tr(truncate(col, 60)), "1", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)
}

func truncate(value string, max int) string {
	runes := []rune(value)
	if len(runes) <= max {
		return value
	}
	return string(runes[:max-3]) + "..."
}

func safeValue(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return value
}

func safePtr(value *string) string {
	if value == nil {
		return "-"
	}
	return safeValue(*value)
}

func formatAmount(value float64) string {
	return fmt.Sprintf("%.2f", value)
}

func formatDateTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("02.01.2006 15:04")
}
