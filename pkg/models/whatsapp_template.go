package models

// TemplateCategory is the WhatsApp template category.
type TemplateCategory string

const (
	TemplateCategoryUtility   TemplateCategory = "utility"
	TemplateCategoryMarketing TemplateCategory = "marketing"
	TemplateCategoryAuth      TemplateCategory = "authentication"
)

// TemplateStatus is the platform review state of a template. Only approved
// templates may be sent.
type TemplateStatus string

const (
	TemplateStatusApproved TemplateStatus = "approved"
	TemplateStatusPending  TemplateStatus = "pending"
	TemplateStatusRejected TemplateStatus = "rejected"
)

// WhatsAppTemplate is a pre-approved message template usable outside the
// 24h messaging window.
type WhatsAppTemplate struct {
	Name      string           `json:"name" validate:"required"`
	Language  string           `json:"language,omitempty"`
	Category  TemplateCategory `json:"category"`
	Status    TemplateStatus   `json:"status"`
	Body      string           `json:"body,omitempty"`
	Variables []string         `json:"variables,omitempty"` // Required variable names
}
