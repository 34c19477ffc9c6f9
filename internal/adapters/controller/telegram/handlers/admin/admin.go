package admin

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/fasevent/registrations/cmd/app"
	"github.com/fasevent/registrations/internal/domain/common/errorz"
	"github.com/fasevent/registrations/internal/domain/dto"
	"github.com/fasevent/registrations/internal/domain/entity"
	"github.com/fasevent/registrations/internal/domain/utils"
	"github.com/fasevent/registrations/internal/domain/utils/location"
	"github.com/fasevent/registrations/pkg/logger/types"
	tele "gopkg.in/telebot.v3"
)

const requestTimeout = 10 * time.Second

type registrationService interface {
	Get(ctx context.Context, registrationID string) (*entity.Registration, error)
	SetPaymentStatus(ctx context.Context, registrationID string, status entity.PaymentStatus) (*dto.StatusUpdateResult, error)
	VerifyEntryByTicketScan(ctx context.Context, payload string, requesterIsAdmin bool) (*dto.TicketScan, error)
	Stats(ctx context.Context) (map[entity.PaymentStatus]int64, error)
}

type Handler struct {
	logger              *types.Logger
	registrationService registrationService
}

func New(a *app.App, logger *types.Logger) *Handler {
	return &Handler{
		logger:              logger,
		registrationService: a.Services.Registration,
	}
}

var Commands = []tele.Command{
	{Text: "entry", Description: "Admit a ticket holder: /entry FAS-123456"},
	{Text: "ticket", Description: "Show a registration: /ticket FAS-123456"},
	{Text: "approve", Description: "Mark a payment as verified"},
	{Text: "reject", Description: "Mark a payment as rejected"},
	{Text: "stats", Description: "Registration counts by payment status"},
}

func (h Handler) help(c tele.Context) error {
	var sb strings.Builder
	sb.WriteString("<b>FAS admin bot</b>\n\n")
	for _, cmd := range Commands {
		sb.WriteString(fmt.Sprintf("/%s - %s\n", cmd.Text, html.EscapeString(cmd.Description)))
	}
	sb.WriteString("\nYou can also send a scanned ticket link to admit its holder.")
	return c.Send(sb.String(), tele.ModeHTML)
}

func argument(c tele.Context) string {
	if args := c.Args(); len(args) > 0 {
		return args[0]
	}
	return ""
}

func (h Handler) entry(c tele.Context) error {
	payload := argument(c)
	if payload == "" {
		return c.Send("Usage: /entry FAS-123456")
	}
	return h.admit(c, payload)
}

// scan treats any plain message containing a ticket link as an entry request.
func (h Handler) scan(c tele.Context) error {
	text := strings.TrimSpace(utils.GetMessageText(c.Message()))
	if !strings.Contains(text, "/verify/") {
		return h.help(c)
	}
	return h.admit(c, text)
}

func (h Handler) admit(c tele.Context, payload string) error {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	scan, err := h.registrationService.VerifyEntryByTicketScan(ctx, payload, true)
	if err != nil {
		return c.Send(h.failure(c, "verify entry", err), tele.ModeHTML)
	}
	h.logger.Infof("(user: %d) entry check for %s, already verified: %t", c.Sender().ID, scan.RegistrationID, scan.AlreadyVerified)
	return c.Send(scanMessage(scan), tele.ModeHTML)
}

func (h Handler) ticket(c tele.Context) error {
	registrationID := strings.ToUpper(argument(c))
	if registrationID == "" {
		return c.Send("Usage: /ticket FAS-123456")
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	registration, err := h.registrationService.Get(ctx, registrationID)
	if err != nil {
		return c.Send(h.failure(c, "get registration", err), tele.ModeHTML)
	}
	return c.Send(registrationMessage(registration), tele.ModeHTML)
}

func (h Handler) setStatus(status entity.PaymentStatus) tele.HandlerFunc {
	return func(c tele.Context) error {
		registrationID := strings.ToUpper(argument(c))
		if registrationID == "" {
			return c.Send(fmt.Sprintf("Usage: /%s FAS-123456", strings.TrimPrefix(c.Message().Text, "/")))
		}

		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		result, err := h.registrationService.SetPaymentStatus(ctx, registrationID, status)
		if err != nil {
			return c.Send(h.failure(c, "set payment status", err), tele.ModeHTML)
		}
		h.logger.Infof("(user: %d) payment of %s marked %s", c.Sender().ID, registrationID, status)

		text := registrationMessage(result.Registration)
		for _, warning := range result.Warnings {
			text += "\n⚠️ " + html.EscapeString(warning)
		}
		return c.Send(text, tele.ModeHTML)
	}
}

func (h Handler) stats(c tele.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	counts, err := h.registrationService.Stats(ctx)
	if err != nil {
		return c.Send(h.failure(c, "count registrations", err), tele.ModeHTML)
	}
	return c.Send(statsMessage(counts), tele.ModeHTML)
}

// failure logs unexpected errors and renders a reply. Domain errors are shown as is.
func (h Handler) failure(c tele.Context, action string, err error) string {
	if errorz.KindOf(err) == "" {
		h.logger.Errorf("(user: %d) failed to %s: %v", c.Sender().ID, action, err)
		return "❌ Technical issues, try again later"
	}
	return "❌ " + html.EscapeString(errorz.MessageOf(err))
}

func scanMessage(scan *dto.TicketScan) string {
	at := scan.EntryTimestamp.In(location.Location()).Format("02.01.2006 15:04")
	header := "✅ <b>Entry verified</b>"
	if scan.AlreadyVerified {
		header = "⛔️ <b>Ticket has already been used</b> at " + at
	}
	return fmt.Sprintf("%s\n\n<b>%s</b>\n%s\n%s",
		header,
		html.EscapeString(scan.Name),
		scan.RegistrationID,
		html.EscapeString(scan.Categories.String()),
	)
}

func registrationMessage(r *entity.Registration) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("<b>%s</b>\n", r.RegistrationID))
	sb.WriteString(fmt.Sprintf("%s, %d\n", html.EscapeString(r.Name), r.Age))
	sb.WriteString(fmt.Sprintf("%s | %s\n", html.EscapeString(r.Email), r.Phone))
	sb.WriteString(fmt.Sprintf("Categories: %s\n", html.EscapeString(r.ParticipationCategories.String())))
	sb.WriteString(fmt.Sprintf("Amount: ₹%d | UTR: %s\n", r.TotalAmount, html.EscapeString(r.UtrID)))
	sb.WriteString(fmt.Sprintf("Payment: <b>%s</b>\n", r.PaymentStatus))
	if r.EntryVerified && r.EntryTimestamp != nil {
		sb.WriteString(fmt.Sprintf("Entered: %s\n", r.EntryTimestamp.In(location.Location()).Format("02.01.2006 15:04")))
	}
	if r.PaymentScreenshotURL != "" {
		sb.WriteString(fmt.Sprintf("<a href=\"%s\">Payment screenshot</a>", html.EscapeString(r.PaymentScreenshotURL)))
	}
	return strings.TrimRight(sb.String(), "\n")
}

func statsMessage(counts map[entity.PaymentStatus]int64) string {
	var total int64
	for _, n := range counts {
		total += n
	}
	return fmt.Sprintf("<b>Registrations: %d</b>\nPending: %d\nVerified: %d\nRejected: %d",
		total,
		counts[entity.PaymentPending],
		counts[entity.PaymentVerified],
		counts[entity.PaymentRejected],
	)
}

func (h Handler) AdminSetup(group *tele.Group) {
	group.Handle("/start", h.help)
	group.Handle("/help", h.help)
	group.Handle("/entry", h.entry)
	group.Handle("/ticket", h.ticket)
	group.Handle("/approve", h.setStatus(entity.PaymentVerified))
	group.Handle("/reject", h.setStatus(entity.PaymentRejected))
	group.Handle("/stats", h.stats)
	group.Handle(tele.OnText, h.scan)
}
