package tasks

import (
	"bytes"
	"fmt"
	"text/template"
)

// Template IDs understood by HandleEmailDeliveryTask.
const (
	TemplatePurchaseRequested = "purchase_requested"
	TemplatePurchaseAccepted  = "purchase_accepted"
	TemplatePurchaseRejected  = "purchase_rejected"
	TemplatePurchaseBought    = "purchase_bought"
	TemplateAgentFraud        = "agent_fraud"
)

type emailTemplate struct {
	subject *template.Template
	body    *template.Template
}

func mustTemplate(id, subject, body string) emailTemplate {
	return emailTemplate{
		subject: template.Must(template.New(id + ".subject").Parse(subject)),
		body:    template.Must(template.New(id + ".body").Parse(body)),
	}
}

var emailTemplates = map[string]emailTemplate{
	TemplatePurchaseRequested: mustTemplate(TemplatePurchaseRequested,
		`New offer on {{.title}}`,
		`Hello {{.agent_name}},

{{.buyer_name}} ({{.buyer_email}}) made an offer on "{{.title}}" in {{.location}}.
Review it from your dashboard under Requested Properties.

{{.app_name}}`),
	TemplatePurchaseAccepted: mustTemplate(TemplatePurchaseAccepted,
		`Your offer on {{.title}} was accepted`,
		`Hello {{.buyer_name}},

{{.agent_name}} accepted your offer on "{{.title}}". You can now complete the payment from your Property Bought page.

{{.app_name}}`),
	TemplatePurchaseRejected: mustTemplate(TemplatePurchaseRejected,
		`Your offer on {{.title}} was not accepted`,
		`Hello {{.buyer_name}},

Your offer on "{{.title}}" was not accepted. Other listings are waiting for you.

{{.app_name}}`),
	TemplatePurchaseBought: mustTemplate(TemplatePurchaseBought,
		`{{.title}} has been paid for`,
		`Hello {{.agent_name}},

{{.buyer_email}} completed the payment for "{{.title}}".
Payment reference: {{.payment_id}}

{{.app_name}}`),
	TemplateAgentFraud: mustTemplate(TemplateAgentFraud,
		`Your agent account was suspended`,
		`Your agent account was flagged by an administrator. Your listings and their purchase requests have been removed.

{{.app_name}}`),
}

// renderTemplate renders the subject and body of a known template.
func renderTemplate(id string, data map[string]interface{}) (subject, body string, err error) {
	tmpl, ok := emailTemplates[id]
	if !ok {
		return "", "", fmt.Errorf("unknown email template %q", id)
	}
	var sb, bb bytes.Buffer
	if err := tmpl.subject.Execute(&sb, data); err != nil {
		return "", "", fmt.Errorf("render subject of %s: %w", id, err)
	}
	if err := tmpl.body.Execute(&bb, data); err != nil {
		return "", "", fmt.Errorf("render body of %s: %w", id, err)
	}
	return sb.String(), bb.String(), nil
}
