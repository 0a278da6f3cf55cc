package service

import (
	"context"
	"math/rand"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	generationdomain "github.com/smallbiznis/advisorhub/internal/generation/domain"
	"github.com/smallbiznis/advisorhub/internal/modules"
	"github.com/smallbiznis/advisorhub/internal/workflow/domain"
	"gorm.io/datatypes"
)

var industryRegulations = map[string][]string{
	"healthcare": {"HIPAA", "HITECH", "FDA", "Medicare/Medicaid"},
	"finance":    {"SOX", "PCI-DSS", "GLBA", "AML/KYC", "GDPR"},
	"retail":     {"PCI-DSS", "CCPA", "GDPR", "FTC"},
	"technology": {"GDPR", "CCPA", "SOC 2", "ISO 27001"},
	"general":    {"GDPR", "CCPA", "OSHA", "ADA"},
}

func (s *Service) GenerateChecklist(ctx context.Context, businessID, userID snowflake.ID, req domain.GenerateChecklistRequest) (domain.GeneratedArtifact, error) {
	resp, err := s.gen.Generate(ctx, businessID, userID, generationdomain.GenerateRequest{
		ModuleType: modules.Compliance,
		Prompt:     "Generate compliance checklist",
		Context: map[string]any{
			"type":         domain.CategoryChecklist,
			"industry":     req.Industry,
			"businessType": req.BusinessType,
			"location":     req.Location,
			"regulations":  req.Regulations,
			"area":         req.Area,
		},
	})
	if err != nil {
		return domain.GeneratedArtifact{}, err
	}

	area := req.Area
	if area == "" {
		area = "General"
	}
	content := datatypes.JSONMap{
		"industry":      req.Industry,
		"business_type": req.BusinessType,
		"location":      req.Location,
		"regulations":   req.Regulations,
		"area":          req.Area,
		"checklist":     resp.Content,
	}
	artifact, err := s.saveArtifact(ctx, businessID, userID, modules.Compliance, domain.CategoryChecklist,
		req.Industry+" - "+area+" Checklist", content, false)
	if err != nil {
		return domain.GeneratedArtifact{}, err
	}
	return domain.GeneratedArtifact{Artifact: artifact, Content: resp.Content}, nil
}

func (s *Service) GeneratePolicy(ctx context.Context, businessID, userID snowflake.ID, req domain.GeneratePolicyRequest) (domain.GeneratedArtifact, error) {
	resp, err := s.gen.Generate(ctx, businessID, userID, generationdomain.GenerateRequest{
		ModuleType: modules.Compliance,
		Prompt:     "Generate policy template",
		Context: map[string]any{
			"type":         "policy_template",
			"policyType":   req.PolicyType,
			"industry":     req.Industry,
			"companySize":  req.CompanySize,
			"requirements": strings.Join(req.Requirements, ", "),
		},
	})
	if err != nil {
		return domain.GeneratedArtifact{}, err
	}

	content := datatypes.JSONMap{
		"policy_type":    req.PolicyType,
		"industry":       req.Industry,
		"company_size":   req.CompanySize,
		"requirements":   req.Requirements,
		"policy_content": resp.Content,
		"version":        "1.0",
	}
	artifact, err := s.saveArtifact(ctx, businessID, userID, modules.Compliance, domain.CategoryPolicy,
		req.PolicyType+" Policy", content, false)
	if err != nil {
		return domain.GeneratedArtifact{}, err
	}
	return domain.GeneratedArtifact{Artifact: artifact, Content: resp.Content}, nil
}

func (s *Service) CreateAudit(ctx context.Context, businessID, userID snowflake.ID, req domain.CreateAuditRequest) (domain.GeneratedArtifact, error) {
	// Audits reuse the checklist template scoped to the audit area.
	resp, err := s.gen.Generate(ctx, businessID, userID, generationdomain.GenerateRequest{
		ModuleType: modules.Compliance,
		Prompt:     "Generate compliance audit checklist",
		Context: map[string]any{
			"type":         domain.CategoryChecklist,
			"industry":     req.Scope,
			"businessType": "audit",
			"regulations":  strings.Join(req.Regulations, ", "),
			"area":         req.Area,
		},
	})
	if err != nil {
		return domain.GeneratedArtifact{}, err
	}

	content := datatypes.JSONMap{
		"area":            req.Area,
		"scope":           req.Scope,
		"regulations":     req.Regulations,
		"last_audit_date": req.LastAuditDate,
		"audit_checklist": resp.Content,
		"status":          "in_progress",
	}
	artifact, err := s.saveArtifact(ctx, businessID, userID, modules.Compliance, domain.CategoryAudit,
		"Audit - "+req.Area, content, false)
	if err != nil {
		return domain.GeneratedArtifact{}, err
	}
	return domain.GeneratedArtifact{Artifact: artifact, Content: resp.Content}, nil
}

func (s *Service) UpdateAudit(ctx context.Context, businessID, auditID snowflake.ID, req domain.UpdateAuditRequest) (domain.Artifact, error) {
	artifact, err := s.repo.FindByID(ctx, s.db, businessID, auditID)
	if err != nil {
		return domain.Artifact{}, err
	}
	if artifact == nil || artifact.Category != domain.CategoryAudit {
		return domain.Artifact{}, domain.ErrArtifactNotFound
	}

	now := s.now().UTC()
	artifact.Content = mergeContent(artifact.Content, map[string]any{
		"status":          req.Status,
		"findings":        req.Findings,
		"recommendations": req.Recommendations,
		"last_update":     now.Format(time.RFC3339),
	})
	artifact.UpdatedAt = now
	if err := s.repo.Update(ctx, s.db, artifact); err != nil {
		return domain.Artifact{}, err
	}
	return *artifact, nil
}

func (s *Service) ListComplianceArtifacts(ctx context.Context, businessID snowflake.ID, category string, limit int) ([]domain.Artifact, error) {
	return s.listArtifacts(ctx, businessID, modules.Compliance, category, limit)
}

func (s *Service) Regulations(industry string) domain.RegulationsCatalog {
	key := strings.ToLower(strings.TrimSpace(industry))
	regulations, ok := industryRegulations[key]
	if !ok {
		regulations = industryRegulations["general"]
	}
	return domain.RegulationsCatalog{
		Industry:    industry,
		Regulations: regulations,
		Description: "Common regulations for " + industry + " businesses",
	}
}

func (s *Service) ComplianceStats(ctx context.Context, businessID snowflake.ID) (domain.ComplianceAnalytics, error) {
	totalChecklists, err := s.repo.Count(ctx, s.db, businessID, modules.Compliance, domain.CategoryChecklist)
	if err != nil {
		return domain.ComplianceAnalytics{}, err
	}
	totalPolicies, err := s.repo.Count(ctx, s.db, businessID, modules.Compliance, domain.CategoryPolicy)
	if err != nil {
		return domain.ComplianceAnalytics{}, err
	}
	totalAudits, err := s.repo.Count(ctx, s.db, businessID, modules.Compliance, domain.CategoryAudit)
	if err != nil {
		return domain.ComplianceAnalytics{}, err
	}
	thisMonth, err := s.repo.CountGenerationsSince(ctx, s.db, businessID, modules.Compliance, s.monthStart())
	if err != nil {
		return domain.ComplianceAnalytics{}, err
	}

	return domain.ComplianceAnalytics{
		TotalChecklists:    totalChecklists,
		TotalPolicies:      totalPolicies,
		TotalAudits:        totalAudits,
		ThisMonthGenerated: thisMonth,
		ComplianceScore:    80 + rand.Intn(21),
		UpcomingDeadlines: []map[string]any{
			{"regulation": "GDPR Annual Review", "due_date": "2026-12-31"},
			{"regulation": "SOC 2 Audit", "due_date": "2026-10-15"},
		},
		RiskAreas: []map[string]any{
			{"area": "Data Privacy", "level": "low"},
			{"area": "Financial Reporting", "level": "medium"},
		},
	}, nil
}
