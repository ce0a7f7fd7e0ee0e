package compliance

import (
	"fmt"

	"github.com/flowbotio/flowbot/pkg/models"
)

var intentCategories = map[string][]models.TemplateCategory{
	"cart":         {models.TemplateCategoryUtility},
	"notification": {models.TemplateCategoryUtility},
	"welcome":      {models.TemplateCategoryUtility, models.TemplateCategoryMarketing},
}

// ValidateWhatsAppTemplate checks a template against the variables the
// caller intends to fill. All problems are accumulated, not just the first.
func ValidateWhatsAppTemplate(tpl models.WhatsAppTemplate, variables map[string]any) []error {
	var errs []error

	if tpl.Status != models.TemplateStatusApproved {
		errs = append(errs, fmt.Errorf("template %s is not approved (status %s)", tpl.Name, tpl.Status))
	}

	for _, name := range tpl.Variables {
		if _, ok := variables[name]; !ok {
			errs = append(errs, fmt.Errorf("missing required template variable %q", name))
		}
	}

	return errs
}

// SelectWhatsAppTemplate picks the template to substitute for a blocked
// free-form message: approved templates only, filtered by the intent's
// category mapping, first match in input order. The deterministic
// first-match tie-break is part of the contract.
func SelectWhatsAppTemplate(_ models.PolicyContext, intent string, available []models.WhatsAppTemplate) *models.WhatsAppTemplate {
	categories, filtered := intentCategories[intent]

	for i := range available {
		tpl := &available[i]
		if tpl.Status != models.TemplateStatusApproved {
			continue
		}

		if filtered && !categoryAllowed(tpl.Category, categories) {
			continue
		}

		return tpl
	}

	return nil
}

func categoryAllowed(category models.TemplateCategory, allowed []models.TemplateCategory) bool {
	for _, c := range allowed {
		if c == category {
			return true
		}
	}

	return false
}
