package notify

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/SundayYogurt/bursary_service/internal/dto"
)

type mailTemplate struct {
	subject string
	body    *template.Template
}

const layout = `<!doctype html>
<html><body style="font-family: Arial, sans-serif; color: #222;">
{{template "content" .}}
<p style="margin-top:24px;color:#777;font-size:12px;">Church Education Trust Fund</p>
</body></html>`

func mustTemplate(content string) *template.Template {
	t := template.Must(template.New("layout").Parse(layout))
	return template.Must(t.New("content").Parse(content))
}

var templates = map[string]mailTemplate{
	dto.EventApplicationSubmitted: {
		subject: "We received your bursary application",
		body: mustTemplate(`<p>Dear {{.name}},</p>
<p>Your application <b>#{{.application_id}}</b> for {{.school_name}} has been received and is now <b>{{.status}}</b>.</p>
<p>The committee will contact you once it has been reviewed.</p>`),
	},
	dto.EventApplicationReceived: {
		subject: "New bursary application submitted",
		body: mustTemplate(`<p>A new application <b>#{{.application_id}}</b> was submitted by {{.name}} ({{.school_name}}).</p>`),
	},
	dto.EventApplicationStatusChanged: {
		subject: "Update on your bursary application",
		body: mustTemplate(`<p>Dear {{.name}},</p>
<p>The status of your application <b>#{{.application_id}}</b> changed from {{.from}} to <b>{{.status}}</b>.</p>
{{if .approved_amount}}<p>Approved amount: {{.approved_amount}}</p>{{end}}`),
	},
	dto.EventApplicationDisbursed: {
		subject: "Your bursary has been disbursed",
		body: mustTemplate(`<p>Dear {{.name}},</p>
<p>{{.amount}} has been paid for application <b>#{{.application_id}}</b>.</p>
<p>Voucher: {{.voucher_code}}<br>Payment reference: {{.payment_reference}}</p>`),
	},
	dto.EventAdminRegistered: {
		subject: "Committee member awaiting approval",
		body: mustTemplate(`<p>{{.name}} ({{.email}}) registered as a committee member and is awaiting approval.</p>`),
	},
	dto.EventAdminStatusChanged: {
		subject: "Your committee account",
		body: mustTemplate(`<p>Dear {{.name}},</p>
<p>Your committee account is now <b>{{.status}}</b>.</p>`),
	},
	dto.EventDonationVerified: {
		subject: "Thank you for your donation",
		body: mustTemplate(`<p>Dear {{.name}},</p>
<p>We have received your donation of {{.amount}} (reference {{.reference}}). Thank you for supporting our students.</p>`),
	},
}

// Render returns the subject and HTML body for an event.
func Render(event dto.NotificationEvent) (string, string, error) {
	tmpl, ok := templates[event.Type]
	if !ok {
		return "", "", fmt.Errorf("no template for event %q", event.Type)
	}
	data := event.Data
	if data == nil {
		data = map[string]string{}
	}
	var buf bytes.Buffer
	if err := tmpl.body.ExecuteTemplate(&buf, "layout", data); err != nil {
		return "", "", err
	}
	return tmpl.subject, buf.String(), nil
}
