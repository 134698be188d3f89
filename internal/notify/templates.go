package notify

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"
)

type Kind string

const (
	KindBookingConfirmed Kind = "booking_confirmed"
	KindBookingCancelled Kind = "booking_cancelled"
)

// BookingEmail carries what the booking templates print. Start must already
// be in the professional's timezone.
type BookingEmail struct {
	ClientName       string
	ProfessionalName string
	ServiceName      string
	Addons           string
	Start            time.Time
	DurationMin      int
	Amount           float64
	Currency         string
	CancellationFee  float64
	CancelledBy      string
	ManageURL        string
}

type Notification struct {
	Kind Kind
	To   string
	Data BookingEmail
}

type Message struct {
	To      string
	Subject string
	HTML    string
}

const layout = `<!doctype html>
<html><body style="font-family:Helvetica,Arial,sans-serif;color:#222">
{{template "body" .}}
<p style="color:#888;font-size:12px">The Suite</p>
</body></html>`

const confirmedBody = `{{define "body"}}
<p>Hi {{.ClientName}},</p>
<p>Your appointment with <strong>{{.ProfessionalName}}</strong> is confirmed.</p>
<ul>
<li>{{.ServiceName}}{{if .Addons}} + {{.Addons}}{{end}}</li>
<li>{{when .Start}} ({{minutes .DurationMin}})</li>
<li>Paid: {{money .Amount .Currency}}</li>
</ul>
{{if .ManageURL}}<p><a href="{{.ManageURL}}">Manage your booking</a></p>{{end}}
{{end}}`

const cancelledBody = `{{define "body"}}
<p>Hi {{.ClientName}},</p>
<p>Your appointment with <strong>{{.ProfessionalName}}</strong> on {{when .Start}} was cancelled{{if eq .CancelledBy "professional"}} by the professional{{end}}.</p>
{{if gt .CancellationFee 0.0}}<p>A cancellation fee of {{money .CancellationFee .Currency}} was charged to your saved card.</p>{{else}}<p>No cancellation fee was charged.</p>{{end}}
{{end}}`

var funcs = template.FuncMap{
	"when": func(t time.Time) string {
		return t.Format("Monday, January 2 at 3:04 PM")
	},
	"money": func(v float64, currency string) string {
		return fmt.Sprintf("%.2f %s", v, strings.ToUpper(currency))
	},
	"minutes": func(m int) string {
		return fmt.Sprintf("%d min", m)
	},
}

var templates = map[Kind]*template.Template{
	KindBookingConfirmed: mustParse(confirmedBody),
	KindBookingCancelled: mustParse(cancelledBody),
}

var subjects = map[Kind]string{
	KindBookingConfirmed: "Your booking with %s is confirmed",
	KindBookingCancelled: "Your booking with %s was cancelled",
}

func mustParse(body string) *template.Template {
	return template.Must(template.Must(template.New("layout").Funcs(funcs).Parse(layout)).Parse(body))
}

// Render turns a notification into a ready-to-send message.
func Render(n Notification) (Message, error) {
	tpl, ok := templates[n.Kind]
	if !ok {
		return Message{}, fmt.Errorf("notify: unknown template %q", n.Kind)
	}

	var buf bytes.Buffer
	if err := tpl.Execute(&buf, n.Data); err != nil {
		return Message{}, fmt.Errorf("notify: render %s: %w", n.Kind, err)
	}

	return Message{
		To:      n.To,
		Subject: fmt.Sprintf(subjects[n.Kind], n.Data.ProfessionalName),
		HTML:    buf.String(),
	}, nil
}
