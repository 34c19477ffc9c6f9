package service

import (
	"fmt"
	"net/url"
	"strings"

	qr "github.com/fasevent/registrations/pkg/qrcode"
)

type TicketService struct {
	qrCFG      qr.Config
	appBaseURL string
}

func NewTicketService(qrCFG qr.Config, appBaseURL string, logoPath string) *TicketService {
	qrCFG.LogoPath = logoPath
	return &TicketService{
		qrCFG:      qrCFG,
		appBaseURL: strings.TrimRight(appBaseURL, "/"),
	}
}

// VerifyURL is the payload encoded in the ticket: <appBaseURL>/verify/<registrationID>.
func (s *TicketService) VerifyURL(registrationID string) string {
	return fmt.Sprintf("%s/verify/%s", s.appBaseURL, url.PathEscape(registrationID))
}

// PNG renders the ticket QR code.
func (s *TicketService) PNG(registrationID string) ([]byte, error) {
	cfg := s.qrCFG
	cfg.Content = s.VerifyURL(registrationID)
	return cfg.Generate()
}

// Issue renders the ticket QR code as a PNG data URI.
func (s *TicketService) Issue(registrationID string) (string, error) {
	png, err := s.PNG(registrationID)
	if err != nil {
		return "", err
	}
	return qr.DataURI(png), nil
}

// ParseTicket extracts the registration id from a scanned payload. Both the full
// verification URL and a bare id are accepted.
func ParseTicket(payload string) string {
	payload = strings.TrimSpace(payload)
	if i := strings.LastIndex(payload, "/verify/"); i >= 0 {
		payload = payload[i+len("/verify/"):]
	}
	payload = strings.TrimRight(payload, "/")
	if i := strings.IndexAny(payload, "?#"); i >= 0 {
		payload = payload[:i]
	}
	if unescaped, err := url.PathUnescape(payload); err == nil {
		payload = unescaped
	}
	return strings.ToUpper(payload)
}
