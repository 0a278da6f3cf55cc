package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	generationdomain "github.com/smallbiznis/advisorhub/internal/generation/domain"
	"github.com/smallbiznis/advisorhub/internal/modules"
	"github.com/smallbiznis/advisorhub/internal/workflow/domain"
	"gorm.io/datatypes"
)

// InvoiceTotal sums quantity times rate across items with decimal
// arithmetic; float rounding must never touch money.
func InvoiceTotal(items []domain.InvoiceItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Quantity.Mul(item.Rate))
	}
	return total
}

func (s *Service) CreateInvoice(ctx context.Context, businessID, userID snowflake.ID, req domain.CreateInvoiceRequest) (domain.InvoiceResult, error) {
	total := InvoiceTotal(req.Items)

	services := make([]string, 0, len(req.Items))
	for _, item := range req.Items {
		services = append(services, fmt.Sprintf("%s (%s x $%s)", item.Description, item.Quantity.String(), item.Rate.String()))
	}

	resp, err := s.gen.Generate(ctx, businessID, userID, generationdomain.GenerateRequest{
		ModuleType: modules.Operations,
		Prompt:     "Generate professional invoice",
		Context: map[string]any{
			"type":       domain.CategoryInvoice,
			"clientName": req.ClientName,
			"services":   strings.Join(services, ", "),
			"dateRange":  req.DueDate,
			"notes":      req.Notes,
			"total":      total.String(),
		},
	})
	if err != nil {
		return domain.InvoiceResult{}, err
	}

	invoiceNumber := fmt.Sprintf("INV-%d", s.now().UTC().UnixMilli())
	items := make([]any, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, map[string]any{
			"description": item.Description,
			"quantity":    item.Quantity.String(),
			"rate":        item.Rate.String(),
		})
	}
	content := datatypes.JSONMap{
		"client_name":       req.ClientName,
		"client_email":      req.ClientEmail,
		"items":             items,
		"due_date":          req.DueDate,
		"notes":             req.Notes,
		"total":             total.String(),
		"invoice_number":    invoiceNumber,
		"generated_content": resp.Content,
	}

	artifact, err := s.saveArtifact(ctx, businessID, userID, modules.Operations, domain.CategoryInvoice,
		"Invoice - "+req.ClientName, content, false)
	if err != nil {
		return domain.InvoiceResult{}, err
	}

	return domain.InvoiceResult{
		Artifact:      artifact,
		Content:       resp.Content,
		InvoiceNumber: invoiceNumber,
		Total:         total,
	}, nil
}

func (s *Service) ScheduleAppointment(ctx context.Context, businessID, userID snowflake.ID, req domain.ScheduleAppointmentRequest) (domain.AppointmentResult, error) {
	resp, err := s.gen.Generate(ctx, businessID, userID, generationdomain.GenerateRequest{
		ModuleType: modules.Operations,
		Prompt:     "Generate appointment reminder",
		Context: map[string]any{
			"type":         "appointment_reminder",
			"service":      req.Title,
			"date":         req.Date,
			"time":         req.Time,
			"location":     req.Location,
			"provider":     req.ClientName,
			"instructions": req.Notes,
		},
	})
	if err != nil {
		return domain.AppointmentResult{}, err
	}

	content := datatypes.JSONMap{
		"title":            req.Title,
		"client_name":      req.ClientName,
		"client_email":     req.ClientEmail,
		"date":             req.Date,
		"time":             req.Time,
		"duration":         req.Duration,
		"location":         req.Location,
		"notes":            req.Notes,
		"reminder_content": resp.Content,
		"status":           "scheduled",
	}
	artifact, err := s.saveArtifact(ctx, businessID, userID, modules.Operations, domain.CategoryAppointment,
		"Appointment - "+req.ClientName, content, false)
	if err != nil {
		return domain.AppointmentResult{}, err
	}

	return domain.AppointmentResult{Artifact: artifact, ReminderContent: resp.Content}, nil
}

func (s *Service) ListInvoices(ctx context.Context, businessID snowflake.ID, limit int) ([]domain.Artifact, error) {
	return s.listArtifacts(ctx, businessID, modules.Operations, domain.CategoryInvoice, limit)
}

func (s *Service) ListAppointments(ctx context.Context, businessID snowflake.ID, limit int) ([]domain.Artifact, error) {
	return s.listArtifacts(ctx, businessID, modules.Operations, domain.CategoryAppointment, limit)
}
