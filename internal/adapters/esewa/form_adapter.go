package esewa

import (
	"fmt"
	"html/template"
	"strings"

	"github.com/nepalpay/esewa-service/internal/domain"
	"github.com/nepalpay/esewa-service/internal/domain/ports"
)

// FormConfig contains configuration for the payment form adapter
type FormConfig struct {
	// eSewa ePay form endpoint URL
	// Sandbox: https://rc-epay.esewa.com.np/api/epay/main/v2/form
	// Production: https://epay.esewa.com.np/api/epay/main/v2/form
	PostURL string

	// Label rendered on the submit button
	SubmitLabel string
}

// DefaultFormConfig returns default configuration for the form adapter
func DefaultFormConfig(environment string) *FormConfig {
	postURL := "https://epay.esewa.com.np/api/epay/main/v2/form"
	if environment == ports.EnvironmentTest {
		postURL = "https://rc-epay.esewa.com.np/api/epay/main/v2/form"
	}

	return &FormConfig{
		PostURL:     postURL,
		SubmitLabel: "Pay with eSewa",
	}
}

var hiddenInputTmpl = template.Must(template.New("hidden").Parse(
	`<input type="hidden" name="{{.Name}}" value="{{.Value}}">` + "\n"))

var formTmpl = template.Must(template.New("form").Parse(
	`<form action="{{.Action}}" method="POST">
{{range .Fields}}<input type="hidden" name="{{.Name}}" value="{{.Value}}">
{{end}}<button type="submit">{{.Label}}</button>
</form>
`))

// FormAdapter renders signed sessions as auto-submittable HTML forms
type FormAdapter struct {
	config *FormConfig
	logger ports.Logger
}

// NewFormAdapter creates a new payment form adapter
func NewFormAdapter(config *FormConfig, logger ports.Logger) *FormAdapter {
	if config == nil {
		config = DefaultFormConfig(ports.EnvironmentTest)
	}
	return &FormAdapter{
		config: config,
		logger: logger,
	}
}

// RenderFields renders the session's form fields as hidden inputs, in the
// exact order the gateway form expects
func (a *FormAdapter) RenderFields(session *domain.PaymentSession) (string, error) {
	fields, err := session.FormFields()
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for _, field := range fields {
		if err := hiddenInputTmpl.Execute(&sb, field); err != nil {
			return "", fmt.Errorf("failed to render form field %q: %w", field.Name, err)
		}
	}
	return sb.String(), nil
}

// RenderForm renders a complete POST form targeting the gateway endpoint
func (a *FormAdapter) RenderForm(session *domain.PaymentSession) (string, error) {
	fields, err := session.FormFields()
	if err != nil {
		return "", err
	}

	a.logger.Info("Rendering payment form",
		ports.String("transaction_uuid", session.TransactionUUID()),
		ports.String("post_url", a.config.PostURL),
	)

	var sb strings.Builder
	err = formTmpl.Execute(&sb, struct {
		Action string
		Label  string
		Fields []domain.FormField
	}{
		Action: a.config.PostURL,
		Label:  a.config.SubmitLabel,
		Fields: fields,
	})
	if err != nil {
		return "", fmt.Errorf("failed to render payment form: %w", err)
	}
	return sb.String(), nil
}
