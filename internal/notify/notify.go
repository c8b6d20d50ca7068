// Package notify renders and sends transactional emails.
package notify

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"time"

	"go.uber.org/zap"
)

//go:embed templates/*.html
var templateFS embed.FS

// Sender delivers one rendered HTML email.
type Sender interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// Data is the union of fields the templates read.
type Data struct {
	Name         string
	Code         string
	ValidFor     string
	ProjectName  string
	ProjectCode  string
	Amount       float64
	DeliveryDate string
	Note         string
	Link         string
	RefundID     string
	Status       string
	Title        string
}

type Message struct {
	To       string
	Subject  string
	Template string
	Data     Data
}

type Notifier struct {
	sender    Sender
	templates *template.Template
}

func New(sender Sender) (*Notifier, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("can't parse email templates: %w", err)
	}
	return &Notifier{sender: sender, templates: tmpl}, nil
}

func (n *Notifier) Render(msg Message) (string, error) {
	var buf bytes.Buffer
	if err := n.templates.ExecuteTemplate(&buf, msg.Template, msg.Data); err != nil {
		return "", fmt.Errorf("can't render %s: %w", msg.Template, err)
	}
	return buf.String(), nil
}

func (n *Notifier) Send(ctx context.Context, msg Message) error {
	body, err := n.Render(msg)
	if err != nil {
		zap.L().Error("can't render email", zap.String("template", msg.Template), zap.Error(err))
		return err
	}
	if err := n.sender.Send(ctx, msg.To, msg.Subject, body); err != nil {
		zap.L().Error("can't send email", zap.String("to", msg.To), zap.String("subject", msg.Subject), zap.Error(err))
		return err
	}
	return nil
}

func OTP(to, code string, validFor time.Duration) Message {
	return Message{
		To:       to,
		Subject:  "Your verification code",
		Template: "otp.html",
		Data:     Data{Name: to, Code: code, ValidFor: humanDuration(validFor)},
	}
}

func ProjectApproved(to, name, projectName, projectCode string, price float64, deliveryDate, notes string) Message {
	return Message{
		To:       to,
		Subject:  "Project approved: " + projectName,
		Template: "approved.html",
		Data: Data{
			Name: name, ProjectName: projectName, ProjectCode: projectCode,
			Amount: price, DeliveryDate: deliveryDate, Note: notes,
		},
	}
}

func ProjectRejected(to, name, projectName, projectCode, reason string) Message {
	return Message{
		To:       to,
		Subject:  "Project rejected: " + projectName,
		Template: "rejected.html",
		Data:     Data{Name: name, ProjectName: projectName, ProjectCode: projectCode, Note: reason},
	}
}

func ProjectCompleted(to, name, projectName, projectCode, link string) Message {
	return Message{
		To:       to,
		Subject:  "Project completed: " + projectName,
		Template: "completed.html",
		Data:     Data{Name: name, ProjectName: projectName, ProjectCode: projectCode, Link: link},
	}
}

func ProjectNote(to, name, projectName, projectCode, note string) Message {
	return Message{
		To:       to,
		Subject:  "New note on " + projectName,
		Template: "note.html",
		Data:     Data{Name: name, ProjectName: projectName, ProjectCode: projectCode, Note: note},
	}
}

func ProjectDeleted(to, name, projectName, projectCode string) Message {
	return Message{
		To:       to,
		Subject:  "Project removed: " + projectName,
		Template: "project_deleted.html",
		Data:     Data{Name: name, ProjectName: projectName, ProjectCode: projectCode},
	}
}

func Refund(to, name, projectName, projectCode, refundID string, amount float64, status string) Message {
	return Message{
		To:       to,
		Subject:  "Refund issued for " + projectName,
		Template: "refund.html",
		Data: Data{
			Name: name, ProjectName: projectName, ProjectCode: projectCode,
			RefundID: refundID, Amount: amount, Status: status,
		},
	}
}

func ReportReply(to, name, title, note string) Message {
	return Message{
		To:       to,
		Subject:  "Reply to your report: " + title,
		Template: "report_reply.html",
		Data:     Data{Name: name, Title: title, Note: note},
	}
}

func ReportClosed(to, name, title, note string) Message {
	return Message{
		To:       to,
		Subject:  "Report closed: " + title,
		Template: "report_closed.html",
		Data:     Data{Name: name, Title: title, Note: note},
	}
}

func humanDuration(d time.Duration) string {
	if d%time.Minute == 0 {
		m := int(d / time.Minute)
		if m == 1 {
			return "1 minute"
		}
		return fmt.Sprintf("%d minutes", m)
	}
	return d.String()
}
