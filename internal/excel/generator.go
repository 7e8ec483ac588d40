package excel

import (
	"fmt"
	"sort"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/nurpe/rodify-dispatch/internal/model"
)

const (
	summarySheet  = "Resumen"
	servicesSheet = "Servicios"
)

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

func (g *Generator) Generate(report model.ServiceReport) ([]byte, error) {
	file := excelize.NewFile()
	defer file.Close()

	if err := file.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, err
	}
	if err := g.writeSummary(file, summarySheet, report); err != nil {
		return nil, err
	}

	if _, err := file.NewSheet(servicesSheet); err != nil {
		return nil, err
	}
	if err := g.writeServices(file, servicesSheet, report); err != nil {
		return nil, err
	}

	file.SetActiveSheet(0)
	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g *Generator) writeSummary(file *excelize.File, sheet string, report model.ServiceReport) error {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	set("A1", "Inicio del periodo")
	set("B1", formatDate(report.PeriodStart))
	set("A2", "Fin del periodo")
	set("B2", formatDate(report.PeriodEnd))
	set("A3", "Zona")
	set("B3", zoneLabel(report.Zone))
	set("A4", "Estado")
	set("B4", statusLabel(report.Status))
	set("A5", "Servicios")
	set("B5", len(report.Services))
	set("A6", fmt.Sprintf("Total cotizado (%s)", report.Currency))
	set("B6", formatAmount(totalQuoted(report.Services)))

	tableRow := 8
	set(fmt.Sprintf("A%d", tableRow), "Estado")
	set(fmt.Sprintf("B%d", tableRow), "Servicios")
	set(fmt.Sprintf("C%d", tableRow), fmt.Sprintf("Total cotizado (%s)", report.Currency))

	for i, group := range groupByStatus(report.Services) {
		row := tableRow + 1 + i
		set(fmt.Sprintf("A%d", row), string(group.status))
		set(fmt.Sprintf("B%d", row), group.count)
		set(fmt.Sprintf("C%d", row), formatAmount(group.total))
	}

	_ = file.SetColWidth(sheet, "A", "A", 28)
	_ = file.SetColWidth(sheet, "B", "C", 20)
	return nil
}

func (g *Generator) writeServices(file *excelize.File, sheet string, report model.ServiceReport) error {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	headers := []string{
		"Código",
		"Creado",
		"Cliente",
		"Técnico",
		"Tipo",
		"Zona",
		"Dirección",
		"Estado",
		"Precio",
		"Pago",
		"Notas",
	}
	for i, header := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		set(cell, header)
	}

	for i, svc := range report.Services {
		row := i + 2
		set(fmt.Sprintf("A%d", row), svc.Code)
		set(fmt.Sprintf("B%d", row), formatDateTime(svc.CreatedAt))
		set(fmt.Sprintf("C%d", row), svc.CustomerID)
		set(fmt.Sprintf("D%d", row), formatID(svc.TechnicianID))
		set(fmt.Sprintf("E%d", row), string(svc.ServiceType))
		set(fmt.Sprintf("F%d", row), string(svc.Zone))
		set(fmt.Sprintf("G%d", row), formatString(svc.Address))
		set(fmt.Sprintf("H%d", row), string(svc.Status))
		set(fmt.Sprintf("I%d", row), svc.QuotedPrice)
		set(fmt.Sprintf("J%d", row), svc.PaymentMethod)
		set(fmt.Sprintf("K%d", row), formatString(svc.Notes))
	}

	_ = file.SetColWidth(sheet, "A", "A", 12)
	_ = file.SetColWidth(sheet, "B", "B", 20)
	_ = file.SetColWidth(sheet, "C", "F", 12)
	_ = file.SetColWidth(sheet, "G", "G", 32)
	_ = file.SetColWidth(sheet, "H", "J", 12)
	_ = file.SetColWidth(sheet, "K", "K", 48)
	return nil
}

type statusGroup struct {
	status model.ServiceStatus
	count  int
	total  float64
}

func groupByStatus(services []model.Service) []statusGroup {
	index := map[model.ServiceStatus]int{}
	var groups []statusGroup
	for _, svc := range services {
		pos, ok := index[svc.Status]
		if !ok {
			groups = append(groups, statusGroup{status: svc.Status})
			pos = len(groups) - 1
			index[svc.Status] = pos
		}
		groups[pos].count++
		groups[pos].total += svc.QuotedPrice
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].status < groups[j].status })
	return groups
}

func totalQuoted(services []model.Service) float64 {
	total := 0.0
	for _, svc := range services {
		total += svc.QuotedPrice
	}
	return total
}

func zoneLabel(zone *model.Zone) string {
	if zone == nil {
		return "todas"
	}
	return string(*zone)
}

func statusLabel(status *model.ServiceStatus) string {
	if status == nil {
		return "todos"
	}
	return string(*status)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

func formatDateTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02 15:04:05")
}

func formatString(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

func formatID(value *int64) string {
	if value == nil {
		return ""
	}
	return fmt.Sprintf("%d", *value)
}

func formatAmount(value float64) string {
	return fmt.Sprintf("%.2f", value)
}
