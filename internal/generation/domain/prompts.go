package domain

import (
	"fmt"
	"strings"

	"github.com/smallbiznis/advisorhub/internal/modules"
)

// PromptTemplate pairs a system prompt with a renderer over the
// request context.
type PromptTemplate struct {
	System string
	Render func(ctx map[string]any) string
}

// TemplateFor resolves the template for a module and request type. An
// empty type falls back to the module's default template.
func TemplateFor(moduleType modules.Type, requestType string) (PromptTemplate, bool) {
	group, ok := promptTemplates[moduleType]
	if !ok {
		return PromptTemplate{}, false
	}
	if requestType == "" {
		requestType = defaultTemplate[moduleType]
	}
	tmpl, ok := group[requestType]
	return tmpl, ok
}

// TemplateTypes lists the request types a module accepts.
func TemplateTypes(moduleType modules.Type) []string {
	group, ok := promptTemplates[moduleType]
	if !ok {
		return nil
	}
	types := make([]string, 0, len(group))
	for name := range group {
		types = append(types, name)
	}
	return types
}

var defaultTemplate = map[modules.Type]string{
	modules.Marketing:       "ad_copy",
	modules.Operations:      "invoice",
	modules.CustomerSupport: "faq_response",
	modules.Compliance:      "checklist",
}

var promptTemplates = map[modules.Type]map[string]PromptTemplate{
	modules.Marketing: {
		"ad_copy": {
			System: "You are an expert marketing copywriter. Create compelling, conversion-focused ad copy that captures attention and drives action. Consider the target audience, platform constraints, and brand voice.",
			Render: func(ctx map[string]any) string {
				return fmt.Sprintf(`Create ad copy for:
Product/Service: %s
Platform: %s
Target Audience: %s
Tone: %s
Keywords: %s
Additional Instructions: %s`,
					str(ctx, "product", ""),
					str(ctx, "platform", "General"),
					str(ctx, "targetAudience", "General audience"),
					str(ctx, "tone", "Professional"),
					list(ctx, "keywords", "None specified"),
					str(ctx, "instructions", "None"))
			},
		},
		"social_post": {
			System: "You are a social media expert. Create engaging social media content that encourages interaction, shares, and brand awareness. Adapt tone and style for each platform.",
			Render: func(ctx map[string]any) string {
				return fmt.Sprintf(`Create a social media post for:
Topic: %s
Platform: %s
Goal: %s
Tone: %s
Include hashtags: %s
Character limit: %s`,
					str(ctx, "topic", ""),
					str(ctx, "platform", "General"),
					str(ctx, "goal", "Engagement"),
					str(ctx, "tone", "Friendly"),
					yesNo(ctx, "includeHashtags"),
					str(ctx, "maxLength", "No limit"))
			},
		},
		"email_campaign": {
			System: "You are an email marketing specialist. Create compelling email campaigns that drive opens, clicks, and conversions while maintaining deliverability best practices.",
			Render: func(ctx map[string]any) string {
				return fmt.Sprintf(`Create an email campaign for:
Campaign Type: %s
Subject: %s
Target Audience: %s
Call to Action: %s
Tone: %s
Include: Subject line, preview text, and body content`,
					str(ctx, "campaignType", ""),
					str(ctx, "subject", ""),
					str(ctx, "targetAudience", ""),
					str(ctx, "callToAction", "Learn More"),
					str(ctx, "tone", "Professional"))
			},
		},
	},
	modules.Operations: {
		"invoice": {
			System: "You are a business operations expert. Generate professional, clear invoices with all necessary details for proper accounting and payment processing.",
			Render: func(ctx map[string]any) string {
				return fmt.Sprintf(`Generate invoice content for:
Client: %s
Services: %s
Date Range: %s
Payment Terms: %s
Additional Notes: %s`,
					str(ctx, "clientName", ""),
					str(ctx, "services", ""),
					str(ctx, "dateRange", ""),
					str(ctx, "paymentTerms", "Net 30"),
					str(ctx, "notes", "None"))
			},
		},
		"appointment_reminder": {
			System: "You are a customer communication specialist. Create friendly, professional appointment reminders that reduce no-shows and improve customer experience.",
			Render: func(ctx map[string]any) string {
				return fmt.Sprintf(`Create appointment reminder for:
Service: %s
Date: %s
Time: %s
Location: %s
Provider: %s
Special Instructions: %s`,
					str(ctx, "service", ""),
					str(ctx, "date", ""),
					str(ctx, "time", ""),
					str(ctx, "location", ""),
					str(ctx, "provider", ""),
					str(ctx, "instructions", "None"))
			},
		},
	},
	modules.CustomerSupport: {
		"faq_response": {
			System: "You are a customer support expert. Provide helpful, accurate, and empathetic responses to customer questions. Be concise but thorough.",
			Render: func(ctx map[string]any) string {
				return fmt.Sprintf(`Answer this customer question:
Question: %s
Product/Service Context: %s
Customer Type: %s
Tone: %s`,
					str(ctx, "question", ""),
					str(ctx, "productContext", "General"),
					str(ctx, "customerType", "General"),
					str(ctx, "tone", "Helpful and professional"))
			},
		},
		"ticket_response": {
			System: "You are a customer support specialist. Draft professional responses to support tickets that resolve issues efficiently while maintaining customer satisfaction.",
			Render: func(ctx map[string]any) string {
				return fmt.Sprintf(`Draft response for support ticket:
Issue: %s
Severity: %s
Customer Sentiment: %s
Previous Interactions: %s
Goal: %s`,
					str(ctx, "issue", ""),
					str(ctx, "severity", "Medium"),
					str(ctx, "sentiment", "Neutral"),
					str(ctx, "previousInteractions", "None"),
					str(ctx, "goal", "Resolve issue"))
			},
		},
	},
	modules.Compliance: {
		"checklist": {
			System: "You are a compliance expert. Create comprehensive, actionable compliance checklists that help businesses meet regulatory requirements in their industry.",
			Render: func(ctx map[string]any) string {
				return fmt.Sprintf(`Create compliance checklist for:
Industry: %s
Business Type: %s
Location: %s
Specific Regulations: %s
Compliance Area: %s`,
					str(ctx, "industry", ""),
					str(ctx, "businessType", ""),
					str(ctx, "location", "United States"),
					str(ctx, "regulations", "General"),
					str(ctx, "area", "General"))
			},
		},
		"policy_template": {
			System: "You are a legal compliance specialist. Create clear, comprehensive policy templates that meet regulatory requirements while being practical for small businesses.",
			Render: func(ctx map[string]any) string {
				return fmt.Sprintf(`Create policy template for:
Policy Type: %s
Industry: %s
Company Size: %s
Specific Requirements: %s`,
					str(ctx, "policyType", ""),
					str(ctx, "industry", ""),
					str(ctx, "companySize", "Small Business"),
					str(ctx, "requirements", "Standard"))
			},
		},
	},
}

func str(ctx map[string]any, key, fallback string) string {
	if ctx == nil {
		return fallback
	}
	v, ok := ctx[key]
	if !ok || v == nil {
		return fallback
	}
	s := strings.TrimSpace(fmt.Sprintf("%v", v))
	if s == "" {
		return fallback
	}
	return s
}

func list(ctx map[string]any, key, fallback string) string {
	if ctx == nil {
		return fallback
	}
	v, ok := ctx[key]
	if !ok {
		return fallback
	}
	items, ok := v.([]any)
	if !ok || len(items) == 0 {
		return fallback
	}
	parts := make([]string, 0, len(items))
	for _, item := range items {
		parts = append(parts, fmt.Sprintf("%v", item))
	}
	return strings.Join(parts, ", ")
}

func yesNo(ctx map[string]any, key string) string {
	if ctx == nil {
		return "No"
	}
	if b, ok := ctx[key].(bool); ok && b {
		return "Yes"
	}
	return "No"
}
