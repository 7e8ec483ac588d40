package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/nurpe/rodify-dispatch/internal/model"
	"github.com/nurpe/rodify-dispatch/internal/repository"
)

type ExcelGenerator interface {
	Generate(report model.ServiceReport) ([]byte, error)
}

type PDFGenerator interface {
	Generate(receipt model.ServiceReceipt) ([]byte, error)
}

type ReportService struct {
	store     repository.Store
	lifecycle *LifecycleService
	excel     ExcelGenerator
	pdf       PDFGenerator
	currency  string
}

type ExportServicesInput struct {
	PeriodStart time.Time
	PeriodEnd   time.Time
	Zone        *model.Zone
	Status      *model.ServiceStatus
}

type GenerateReportResult struct {
	FileName string
	Content  []byte
}

func NewReportService(
	store repository.Store,
	lifecycle *LifecycleService,
	excel ExcelGenerator,
	pdf PDFGenerator,
	currency string,
) *ReportService {
	return &ReportService{
		store:     store,
		lifecycle: lifecycle,
		excel:     excel,
		pdf:       pdf,
		currency:  currency,
	}
}

// ExportServices builds an XLSX of services created between the two dates,
// both inclusive.
func (s *ReportService) ExportServices(ctx context.Context, input ExportServicesInput) (*GenerateReportResult, error) {
	if input.PeriodStart.IsZero() || input.PeriodEnd.IsZero() {
		return nil, fmt.Errorf("%w: period dates are required", ErrInvalidInput)
	}

	periodStart := dateOnly(input.PeriodStart)
	periodEnd := dateOnly(input.PeriodEnd)
	if periodStart.After(periodEnd) {
		return nil, fmt.Errorf("%w: from must be before or equal to to", ErrInvalidInput)
	}

	services, err := s.lifecycle.List(ctx, model.ServiceFilter{
		From:   periodStart,
		To:     periodEnd.Add(24 * time.Hour),
		Zone:   input.Zone,
		Status: input.Status,
	})
	if err != nil {
		return nil, err
	}

	report := model.ServiceReport{
		PeriodStart: periodStart,
		PeriodEnd:   periodEnd,
		Zone:        input.Zone,
		Status:      input.Status,
		Currency:    s.currency,
		Services:    services,
	}
	content, err := s.excel.Generate(report)
	if err != nil {
		return nil, err
	}

	fileName := fmt.Sprintf("services-%s-%s", report.PeriodStart.Format("20060102"), report.PeriodEnd.Format("20060102"))
	if input.Zone != nil {
		fileName += "-" + string(*input.Zone)
	}
	return &GenerateReportResult{
		FileName: fileName + ".xlsx",
		Content:  content,
	}, nil
}

func (s *ReportService) GenerateReceipt(ctx context.Context, code string) (*GenerateReportResult, error) {
	svc, err := s.lifecycle.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	customer, err := s.store.GetUser(ctx, svc.CustomerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, err
	}

	var technician *model.Technician
	if svc.TechnicianID != nil {
		technician, err = s.store.GetTechnician(ctx, *svc.TechnicianID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	events, err := s.store.ListServiceEvents(ctx, svc.ID)
	if err != nil {
		return nil, err
	}

	content, err := s.pdf.Generate(model.ServiceReceipt{
		Service:    *svc,
		Customer:   *customer,
		Technician: technician,
		Events:     events,
		Currency:   s.currency,
	})
	if err != nil {
		return nil, err
	}
	return &GenerateReportResult{
		FileName: strings.ToLower(svc.Code) + ".pdf",
		Content:  content,
	}, nil
}

func dateOnly(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
