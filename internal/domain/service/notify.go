package service

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"net/url"
	"strings"
	"time"

	"github.com/fasevent/registrations/internal/domain/dto"
	"github.com/fasevent/registrations/internal/domain/entity"
	"github.com/fasevent/registrations/internal/domain/utils/calendar"
	"github.com/fasevent/registrations/internal/domain/utils/location"
	"github.com/fasevent/registrations/pkg/logger/types"
	"github.com/fasevent/registrations/pkg/smtp"
	"go.uber.org/zap/zapcore"
	tele "gopkg.in/telebot.v3"
)

const (
	SubjectConfirmation = "Registration Confirmation - Fashion Show Event"
	SubjectAdminAlert   = "New Fashion Show Registration - %s"
	SubjectStatus       = "Payment Status Update - Fashion Show Event"
	SubjectVerification = "Email Verification - Fashion Show Event"
)

//go:embed templates/*.html
var templatesFS embed.FS

type mailer interface {
	Send(to, subject, html string, attachments ...smtp.Attachment) (string, error)
}

type ticketLinker interface {
	VerifyURL(registrationID string) string
}

// TelegramBot is the part of *tele.Bot used for alerts and log forwarding.
type TelegramBot interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
	ChatByID(id int64) (*tele.Chat, error)
}

type notifyMetrics interface {
	NotificationFailed(kind string)
}

type NotifyOptions struct {
	AppBaseURL      string
	AdminEmail      string
	Event           dto.Event
	AlertsChatID    int64
	VerificationTTL time.Duration
}

// NotifyService sends the lifecycle emails and, when a bot is configured, admin chat alerts.
type NotifyService struct {
	logger *types.Logger

	mailer  mailer
	tickets ticketLinker
	bot     TelegramBot
	metrics notifyMetrics

	templates map[string]*template.Template
	opts      NotifyOptions
}

// NewNotifyService parses the email templates. bot and metrics may be nil.
func NewNotifyService(logger *types.Logger, mailer mailer, tickets ticketLinker, bot TelegramBot, metrics notifyMetrics, opts NotifyOptions) (*NotifyService, error) {
	templates := make(map[string]*template.Template)
	for _, name := range []string{"confirmation", "admin", "status", "verification"} {
		t, err := template.ParseFS(templatesFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s template: %w", name, err)
		}
		templates[name] = t
	}

	opts.AppBaseURL = strings.TrimRight(opts.AppBaseURL, "/")
	if opts.Event.Name == "" {
		opts.Event.Name = "Fashion Show Event"
	}
	if opts.VerificationTTL <= 0 {
		opts.VerificationTTL = 10 * time.Minute
	}

	return &NotifyService{
		logger:    logger,
		mailer:    mailer,
		tickets:   tickets,
		bot:       bot,
		metrics:   metrics,
		templates: templates,
		opts:      opts,
	}, nil
}

func (s *NotifyService) render(name string, data map[string]interface{}) (string, error) {
	data["EventName"] = s.opts.Event.Name
	var buf bytes.Buffer
	if err := s.templates[name].ExecuteTemplate(&buf, "layout", data); err != nil {
		return "", fmt.Errorf("failed to render %s email: %w", name, err)
	}
	return buf.String(), nil
}

func (s *NotifyService) send(ctx context.Context, kind, to, subject, html string, attachments ...smtp.Attachment) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	messageID, err := s.mailer.Send(to, subject, html, attachments...)
	if err != nil {
		if s.metrics != nil {
			s.metrics.NotificationFailed(kind)
		}
		return err
	}
	s.logger.Debugf("%s email sent to %s: %s", kind, to, messageID)
	return nil
}

func (s *NotifyService) registrationURL(registrationID string) string {
	return fmt.Sprintf("%s?registrationId=%s", s.opts.AppBaseURL, url.QueryEscape(registrationID))
}

func formatDate(t time.Time) string {
	return t.In(location.Location()).Format("2 January 2006")
}

// RegistrationConfirmation tells the participant their registration was received.
func (s *NotifyService) RegistrationConfirmation(ctx context.Context, registration *entity.Registration) error {
	html, err := s.render("confirmation", map[string]interface{}{
		"Title":           "Registration Confirmation",
		"Name":            registration.Name,
		"RegistrationID":  registration.RegistrationID,
		"Categories":      registration.ParticipationCategories.String(),
		"TotalAmount":     registration.TotalAmount,
		"Date":            formatDate(registration.RegistrationDate),
		"RegistrationURL": s.registrationURL(registration.RegistrationID),
	})
	if err != nil {
		return err
	}
	return s.send(ctx, "confirmation", registration.Email, SubjectConfirmation, html)
}

// AdminNewRegistration alerts the organizers by email and, if configured, in the alerts chat.
// The chat alert is best-effort; only the email result is returned.
func (s *NotifyService) AdminNewRegistration(ctx context.Context, registration *entity.Registration) error {
	s.alertChat(registration)

	if s.opts.AdminEmail == "" {
		return nil
	}
	html, err := s.render("admin", map[string]interface{}{
		"Title":          "New Registration",
		"Name":           registration.Name,
		"Email":          registration.Email,
		"RegistrationID": registration.RegistrationID,
		"UtrID":          registration.UtrID,
		"Categories":     registration.ParticipationCategories.String(),
		"TotalAmount":    registration.TotalAmount,
		"Date":           formatDate(registration.RegistrationDate),
		"AdminURL":       fmt.Sprintf("%s/admin/registrations/%s", s.opts.AppBaseURL, url.PathEscape(registration.RegistrationID)),
	})
	if err != nil {
		return err
	}
	return s.send(ctx, "admin", s.opts.AdminEmail, fmt.Sprintf(SubjectAdminAlert, registration.RegistrationID), html)
}

func (s *NotifyService) alertChat(registration *entity.Registration) {
	if s.bot == nil || s.opts.AlertsChatID == 0 {
		return
	}
	chat, err := s.bot.ChatByID(s.opts.AlertsChatID)
	if err != nil {
		s.logger.Warnf("failed to get alerts chat %d: %v", s.opts.AlertsChatID, err)
		return
	}
	text := fmt.Sprintf("New registration %s\n%s <%s>\nCategories: %s\nAmount: %d\nUTR: %s",
		registration.RegistrationID,
		registration.Name,
		registration.Email,
		registration.ParticipationCategories.String(),
		registration.TotalAmount,
		registration.UtrID,
	)
	if _, err = s.bot.Send(chat, text); err != nil {
		s.logger.Warnf("failed to send registration alert to chat %d: %v", s.opts.AlertsChatID, err)
	}
}

// PaymentStatus tells the participant about the admin's decision. A verified payment
// carries a calendar invite when the event start is configured.
func (s *NotifyService) PaymentStatus(ctx context.Context, registration *entity.Registration) error {
	verified := registration.PaymentStatus == entity.PaymentVerified

	var attachments []smtp.Attachment
	if verified && !s.opts.Event.StartTime.IsZero() {
		invite, err := calendar.TicketToICS(s.opts.Event, registration, s.tickets.VerifyURL(registration.RegistrationID))
		if err != nil {
			s.logger.Warnf("(registration: %s) failed to build calendar invite: %v", registration.RegistrationID, err)
		} else {
			attachments = append(attachments, smtp.Attachment{
				Name:        "ticket.ics",
				ContentType: "text/calendar",
				Data:        invite,
			})
		}
	}

	html, err := s.render("status", map[string]interface{}{
		"Title":           "Payment Status Update",
		"Name":            registration.Name,
		"RegistrationID":  registration.RegistrationID,
		"Categories":      registration.ParticipationCategories.String(),
		"Verified":        verified,
		"HasInvite":       len(attachments) > 0,
		"RegistrationURL": s.registrationURL(registration.RegistrationID),
	})
	if err != nil {
		return err
	}
	return s.send(ctx, "status", registration.Email, SubjectStatus, html, attachments...)
}

// EmailVerificationCode delivers a one-time code.
func (s *NotifyService) EmailVerificationCode(ctx context.Context, email, name, code string) error {
	if name == "" {
		name = "there"
	}
	html, err := s.render("verification", map[string]interface{}{
		"Title":    "Email Verification",
		"Name":     name,
		"Code":     code,
		"ValidFor": fmt.Sprintf("%d minutes", int(s.opts.VerificationTTL.Minutes())),
	})
	if err != nil {
		return err
	}
	return s.send(ctx, "verification", email, SubjectVerification, html)
}

// LogHook returns a log hook forwarding entries at or above level to a chat.
//
// Parameters:
//   - channelID is the chat to send the log to
//   - level is the minimum log level to send
func (s *NotifyService) LogHook(channelID int64, level zapcore.Level) (types.LogHook, error) {
	if s.bot == nil {
		return nil, fmt.Errorf("telegram bot is not configured")
	}
	chat, err := s.bot.ChatByID(channelID)
	if err != nil {
		return nil, err
	}
	return func(log types.Log) {
		if log.Level < level {
			return
		}
		go func() {
			_, err := s.bot.Send(chat, log.String())
			if err != nil && !strings.Contains(log.Message, "failed to send log to channel") {
				s.logger.Errorf("failed to send log to channel %d: %v", channelID, err)
			}
		}()
	}, nil
}
