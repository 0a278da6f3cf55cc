package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

var (
	ErrArtifactNotFound = errors.New("artifact_not_found")
	ErrTemplateLimit    = errors.New("template_limit_reached")
)

// Marketing

type GenerateMarketingRequest struct {
	Type    string         `json:"type" binding:"required,oneof=ad_copy social_post email_campaign"`
	Context map[string]any `json:"context"`
}

type SaveCampaignRequest struct {
	Name         string         `json:"name" binding:"required"`
	Type         string         `json:"type" binding:"required,oneof=ad_copy social_post email_campaign"`
	Content      string         `json:"content" binding:"required"`
	Platform     string         `json:"platform"`
	ScheduledFor string         `json:"scheduled_for"`
	Metadata     map[string]any `json:"metadata"`
}

type ScheduleCampaignRequest struct {
	ScheduledFor string `json:"scheduled_for" binding:"required"`
	Platform     string `json:"platform"`
}

type MarketingAnalytics struct {
	TotalCampaigns int64          `json:"total_campaigns"`
	ThisMonth      int64          `json:"this_month"`
	Engagement     map[string]any `json:"engagement"`
	TopPerforming  map[string]any `json:"top_performing"`
}

// Operations

type InvoiceItem struct {
	Description string          `json:"description" binding:"required"`
	Quantity    decimal.Decimal `json:"quantity" binding:"required"`
	Rate        decimal.Decimal `json:"rate" binding:"required"`
}

type CreateInvoiceRequest struct {
	ClientName  string        `json:"client_name" binding:"required"`
	ClientEmail string        `json:"client_email" binding:"required,email"`
	Items       []InvoiceItem `json:"items" binding:"required,min=1"`
	DueDate     string        `json:"due_date" binding:"required"`
	Notes       string        `json:"notes"`
}

type InvoiceResult struct {
	Artifact      Artifact        `json:"artifact"`
	Content       string          `json:"content"`
	InvoiceNumber string          `json:"invoice_number"`
	Total         decimal.Decimal `json:"total"`
}

type ScheduleAppointmentRequest struct {
	Title       string `json:"title" binding:"required"`
	ClientName  string `json:"client_name" binding:"required"`
	ClientEmail string `json:"client_email" binding:"required,email"`
	Date        string `json:"date" binding:"required"`
	Time        string `json:"time" binding:"required"`
	Duration    int    `json:"duration" binding:"required"`
	Location    string `json:"location"`
	Notes       string `json:"notes"`
}

type AppointmentResult struct {
	Artifact        Artifact `json:"artifact"`
	ReminderContent string   `json:"reminder_content"`
}

// Customer support

type GenerateSupportRequest struct {
	Question string         `json:"question" binding:"required"`
	Context  map[string]any `json:"context"`
}

type CreateTicketRequest struct {
	Subject     string `json:"subject" binding:"required"`
	Description string `json:"description" binding:"required"`
	Priority    string `json:"priority"`
}

type TicketResult struct {
	Artifact Artifact `json:"artifact"`
	TicketID string   `json:"ticket_id"`
	Response string   `json:"response"`
}

type UpdateTicketRequest struct {
	Status   string `json:"status" binding:"required"`
	Response string `json:"response"`
}

type ChatRequest struct {
	Message   string         `json:"message" binding:"required"`
	SessionID string         `json:"session_id" binding:"required"`
	Context   map[string]any `json:"context"`
}

type ChatResult struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
	Timestamp string `json:"timestamp"`
}

type UpsertFAQRequest struct {
	Question string `json:"question" binding:"required"`
	Category string `json:"category" binding:"required"`
	Answer   string `json:"answer"`
}

type SupportAnalytics struct {
	TotalTickets          int64            `json:"total_tickets"`
	TotalFAQs             int64            `json:"total_faqs"`
	ThisMonthInteractions int64            `json:"this_month_interactions"`
	Metrics               map[string]any   `json:"metrics"`
	TicketsByStatus       map[string]int64 `json:"tickets_by_status"`
}

// Compliance

type GenerateChecklistRequest struct {
	Industry     string `json:"industry" binding:"required"`
	BusinessType string `json:"business_type" binding:"required"`
	Location     string `json:"location"`
	Regulations  string `json:"regulations"`
	Area         string `json:"area"`
}

type GeneratePolicyRequest struct {
	PolicyType   string   `json:"policy_type" binding:"required"`
	Industry     string   `json:"industry" binding:"required"`
	CompanySize  string   `json:"company_size"`
	Requirements []string `json:"requirements"`
}

type CreateAuditRequest struct {
	Area          string   `json:"area" binding:"required"`
	Scope         string   `json:"scope" binding:"required"`
	Regulations   []string `json:"regulations"`
	LastAuditDate string   `json:"last_audit_date"`
}

type UpdateAuditRequest struct {
	Status          string `json:"status" binding:"required"`
	Findings        string `json:"findings"`
	Recommendations string `json:"recommendations"`
}

type GeneratedArtifact struct {
	Artifact Artifact `json:"artifact"`
	Content  string   `json:"content"`
}

type RegulationsCatalog struct {
	Industry    string   `json:"industry"`
	Regulations []string `json:"regulations"`
	Description string   `json:"description"`
}

type ComplianceAnalytics struct {
	TotalChecklists    int64            `json:"total_checklists"`
	TotalPolicies      int64            `json:"total_policies"`
	TotalAudits        int64            `json:"total_audits"`
	ThisMonthGenerated int64            `json:"this_month_generated"`
	ComplianceScore    int              `json:"compliance_score"`
	UpcomingDeadlines  []map[string]any `json:"upcoming_deadlines"`
	RiskAreas          []map[string]any `json:"risk_areas"`
}

// Service groups the four AI module workflows. Every operation that
// generates content goes through the generation dispatcher and its
// quota accounting.
type Service interface {
	// Marketing
	GenerateMarketing(ctx context.Context, businessID, userID snowflake.ID, req GenerateMarketingRequest) (any, error)
	SaveCampaign(ctx context.Context, businessID, userID snowflake.ID, req SaveCampaignRequest) (Artifact, error)
	ListCampaigns(ctx context.Context, businessID snowflake.ID, campaignType string, limit int) ([]Artifact, error)
	ScheduleCampaign(ctx context.Context, businessID, campaignID snowflake.ID, req ScheduleCampaignRequest) (Artifact, error)
	MarketingStats(ctx context.Context, businessID snowflake.ID) (MarketingAnalytics, error)

	// Operations
	CreateInvoice(ctx context.Context, businessID, userID snowflake.ID, req CreateInvoiceRequest) (InvoiceResult, error)
	ScheduleAppointment(ctx context.Context, businessID, userID snowflake.ID, req ScheduleAppointmentRequest) (AppointmentResult, error)
	ListInvoices(ctx context.Context, businessID snowflake.ID, limit int) ([]Artifact, error)
	ListAppointments(ctx context.Context, businessID snowflake.ID, limit int) ([]Artifact, error)

	// Customer support
	GenerateSupportResponse(ctx context.Context, businessID, userID snowflake.ID, req GenerateSupportRequest) (any, error)
	CreateTicket(ctx context.Context, businessID, userID snowflake.ID, req CreateTicketRequest) (TicketResult, error)
	UpdateTicket(ctx context.Context, businessID, ticketID snowflake.ID, req UpdateTicketRequest) (Artifact, error)
	Chat(ctx context.Context, businessID, userID snowflake.ID, req ChatRequest) (ChatResult, error)
	UpsertFAQ(ctx context.Context, businessID, userID snowflake.ID, req UpsertFAQRequest) (Artifact, error)
	ListFAQs(ctx context.Context, businessID snowflake.ID, limit int) ([]Artifact, error)
	ListTickets(ctx context.Context, businessID snowflake.ID, limit int) ([]Artifact, error)
	SupportStats(ctx context.Context, businessID snowflake.ID) (SupportAnalytics, error)

	// Compliance
	GenerateChecklist(ctx context.Context, businessID, userID snowflake.ID, req GenerateChecklistRequest) (GeneratedArtifact, error)
	GeneratePolicy(ctx context.Context, businessID, userID snowflake.ID, req GeneratePolicyRequest) (GeneratedArtifact, error)
	CreateAudit(ctx context.Context, businessID, userID snowflake.ID, req CreateAuditRequest) (GeneratedArtifact, error)
	UpdateAudit(ctx context.Context, businessID, auditID snowflake.ID, req UpdateAuditRequest) (Artifact, error)
	ListComplianceArtifacts(ctx context.Context, businessID snowflake.ID, category string, limit int) ([]Artifact, error)
	Regulations(industry string) RegulationsCatalog
	ComplianceStats(ctx context.Context, businessID snowflake.ID) (ComplianceAnalytics, error)
}
