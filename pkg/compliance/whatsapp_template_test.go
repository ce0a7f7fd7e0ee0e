package compliance

import (
	"testing"

	"github.com/flowbotio/flowbot/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectWhatsAppTemplate_FirstApprovedUtilityForCartIntent(t *testing.T) {
	available := []models.WhatsAppTemplate{
		{Name: "promo_blast", Category: models.TemplateCategoryMarketing, Status: models.TemplateStatusApproved},
		{Name: "cart_reminder_a", Category: models.TemplateCategoryUtility, Status: models.TemplateStatusApproved},
		{Name: "cart_reminder_b", Category: models.TemplateCategoryUtility, Status: models.TemplateStatusApproved},
	}

	tpl := SelectWhatsAppTemplate(models.PolicyContext{}, "cart", available)

	require.NotNil(t, tpl)
	assert.Equal(t, "cart_reminder_a", tpl.Name)
}

func TestSelectWhatsAppTemplate_SkipsUnapproved(t *testing.T) {
	available := []models.WhatsAppTemplate{
		{Name: "pending_one", Category: models.TemplateCategoryUtility, Status: models.TemplateStatusPending},
		{Name: "rejected_one", Category: models.TemplateCategoryUtility, Status: models.TemplateStatusRejected},
		{Name: "approved_one", Category: models.TemplateCategoryUtility, Status: models.TemplateStatusApproved},
	}

	tpl := SelectWhatsAppTemplate(models.PolicyContext{}, "notification", available)

	require.NotNil(t, tpl)
	assert.Equal(t, "approved_one", tpl.Name)
}

func TestSelectWhatsAppTemplate_WelcomeAcceptsMarketing(t *testing.T) {
	available := []models.WhatsAppTemplate{
		{Name: "welcome_promo", Category: models.TemplateCategoryMarketing, Status: models.TemplateStatusApproved},
	}

	tpl := SelectWhatsAppTemplate(models.PolicyContext{}, "welcome", available)

	require.NotNil(t, tpl)
	assert.Equal(t, "welcome_promo", tpl.Name)
}

func TestSelectWhatsAppTemplate_UnknownIntentIgnoresCategory(t *testing.T) {
	available := []models.WhatsAppTemplate{
		{Name: "auth_code", Category: models.TemplateCategoryAuth, Status: models.TemplateStatusApproved},
	}

	tpl := SelectWhatsAppTemplate(models.PolicyContext{}, "something_else", available)

	require.NotNil(t, tpl)
	assert.Equal(t, "auth_code", tpl.Name)
}

func TestSelectWhatsAppTemplate_NoMatch(t *testing.T) {
	available := []models.WhatsAppTemplate{
		{Name: "promo", Category: models.TemplateCategoryMarketing, Status: models.TemplateStatusApproved},
	}

	assert.Nil(t, SelectWhatsAppTemplate(models.PolicyContext{}, "cart", available))
	assert.Nil(t, SelectWhatsAppTemplate(models.PolicyContext{}, "cart", nil))
}

func TestValidateWhatsAppTemplate_AccumulatesAllErrors(t *testing.T) {
	tpl := models.WhatsAppTemplate{
		Name:      "order_update",
		Status:    models.TemplateStatusPending,
		Variables: []string{"name", "order_id"},
	}

	errs := ValidateWhatsAppTemplate(tpl, map[string]any{"name": "Ana"})

	require.Len(t, errs, 2)
	assert.Contains(t, errs[0].Error(), "not approved")
	assert.Contains(t, errs[1].Error(), "order_id")
}

func TestValidateWhatsAppTemplate_Valid(t *testing.T) {
	tpl := models.WhatsAppTemplate{
		Name:      "order_update",
		Status:    models.TemplateStatusApproved,
		Variables: []string{"name"},
	}

	assert.Empty(t, ValidateWhatsAppTemplate(tpl, map[string]any{"name": "Ana"}))
}
