package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/fasevent/registrations/internal/domain/common/errorz"
	"github.com/fasevent/registrations/internal/domain/dto"
	"github.com/fasevent/registrations/internal/domain/entity"
	"github.com/fasevent/registrations/internal/domain/utils/location"
	"github.com/fasevent/registrations/internal/domain/utils/validator"
	"github.com/fasevent/registrations/pkg/generator"
	"github.com/fasevent/registrations/pkg/logger/types"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

const (
	WarningTicket       = "ticket QR code could not be generated"
	WarningConfirmation = "confirmation email could not be sent"
	WarningAdminAlert   = "admin notification could not be sent"
	WarningStatusEmail  = "status notification could not be sent"
)

type RegistrationStorage interface {
	Create(ctx context.Context, registration *entity.Registration) (*entity.Registration, error)
	Get(ctx context.Context, registrationID string) (*entity.Registration, error)
	GetAll(ctx context.Context) ([]entity.Registration, error)
	UpdatePaymentStatus(ctx context.Context, registrationID string, status entity.PaymentStatus, qrCodeImage *string) (*entity.Registration, error)
	SetQRCodeImage(ctx context.Context, registrationID string, qrCodeImage string) error
	MarkEntryVerified(ctx context.Context, registrationID string, at time.Time) (bool, error)
	CountByStatus(ctx context.Context) (map[entity.PaymentStatus]int64, error)
}

type costProvider interface {
	Get(ctx context.Context) (*entity.CategoryCost, error)
}

type ticketIssuer interface {
	Issue(registrationID string) (string, error)
}

type registrationNotifier interface {
	RegistrationConfirmation(ctx context.Context, registration *entity.Registration) error
	AdminNewRegistration(ctx context.Context, registration *entity.Registration) error
	PaymentStatus(ctx context.Context, registration *entity.Registration) error
}

type emailVerificationChecker interface {
	IsVerified(ctx context.Context, email string) (bool, error)
}

type registrationMetrics interface {
	RegistrationCreated()
	PaymentStatusChanged(status string)
	EntryChecked(outcome string)
}

type RegistrationOptions struct {
	IDPrefix             string
	MaxIDAttempts        int
	RequireVerifiedEmail bool
}

// RegistrationService owns the registration lifecycle: creation, payment decisions,
// ticket issuance and entry verification.
type RegistrationService struct {
	logger *types.Logger

	storage  RegistrationStorage
	costs    costProvider
	tickets  ticketIssuer
	notifier registrationNotifier
	emails   emailVerificationChecker
	metrics  registrationMetrics

	opts RegistrationOptions
	now  func() time.Time
}

func NewRegistrationService(
	logger *types.Logger,
	storage RegistrationStorage,
	costs costProvider,
	tickets ticketIssuer,
	notifier registrationNotifier,
	emails emailVerificationChecker,
	metrics registrationMetrics,
	opts RegistrationOptions,
) *RegistrationService {
	if opts.IDPrefix == "" {
		opts.IDPrefix = "FAS"
	}
	if opts.MaxIDAttempts <= 0 {
		opts.MaxIDAttempts = 5
	}
	if metrics == nil {
		metrics = nopMetrics{}
	}
	return &RegistrationService{
		logger:   logger,
		storage:  storage,
		costs:    costs,
		tickets:  tickets,
		notifier: notifier,
		emails:   emails,
		metrics:  metrics,
		opts:     opts,
		now:      time.Now,
	}
}

// WithClock replaces the time source. Used by tests.
func (s *RegistrationService) WithClock(now func() time.Time) *RegistrationService {
	s.now = now
	return s
}

// Create validates and stores a registration. The total is fixed from the cost table
// at this moment. Ticket generation and emails run after the record is committed and
// never fail the call; failures are reported in Warnings.
func (s *RegistrationService) Create(ctx context.Context, input dto.RegistrationInput) (*dto.RegistrationResult, error) {
	if err := validator.Registration(&input); err != nil {
		return nil, err
	}

	if s.opts.RequireVerifiedEmail && s.emails != nil {
		verified, err := s.emails.IsVerified(ctx, input.Email)
		if err != nil {
			return nil, fmt.Errorf("failed to check email verification: %w", err)
		}
		if !verified {
			return nil, errorz.Validation("email address has not been verified")
		}
	}

	costs, err := s.costs.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load category costs: %w", err)
	}

	registration := &entity.Registration{
		Name:                    input.Name,
		Age:                     input.Age,
		Gender:                  input.Gender,
		Email:                   input.Email,
		Phone:                   input.Phone,
		EducationStatus:         input.EducationStatus,
		ParticipationCategories: input.ParticipationCategories,
		UtrID:                   input.UtrID,
		PaymentScreenshotURL:    input.PaymentScreenshotURL,
		TotalAmount:             costs.Total(input.ParticipationCategories),
		PaymentStatus:           entity.PaymentPending,
		RegistrationDate:        s.now(),
	}

	if err = s.insert(ctx, registration); err != nil {
		return nil, err
	}
	s.metrics.RegistrationCreated()
	s.logger.Infof("(registration: %s) created, total %d", registration.RegistrationID, registration.TotalAmount)

	result := &dto.RegistrationResult{
		RegistrationID: registration.RegistrationID,
		TotalAmount:    registration.TotalAmount,
	}

	if image, ok := s.issueTicket(ctx, registration); ok {
		result.QRCodeImage = image
	} else {
		result.Warnings = append(result.Warnings, WarningTicket)
	}

	if err = s.notifier.RegistrationConfirmation(ctx, registration); err != nil {
		s.logger.Errorf("(registration: %s) failed to send confirmation: %v", registration.RegistrationID, err)
		result.Warnings = append(result.Warnings, WarningConfirmation)
	}
	if err = s.notifier.AdminNewRegistration(ctx, registration); err != nil {
		s.logger.Errorf("(registration: %s) failed to notify admin: %v", registration.RegistrationID, err)
		result.Warnings = append(result.Warnings, WarningAdminAlert)
	}

	return result, nil
}

// insert assigns a fresh registration id, retrying on the rare collision.
func (s *RegistrationService) insert(ctx context.Context, registration *entity.Registration) error {
	for attempt := 0; attempt < s.opts.MaxIDAttempts; attempt++ {
		id, err := generator.RegistrationID(s.opts.IDPrefix)
		if err != nil {
			return err
		}
		registration.RegistrationID = id

		_, err = s.storage.Create(ctx, registration)
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("failed to save registration: %w", err)
		}
		s.logger.Warnf("registration id %s already taken, retrying", id)
	}
	return fmt.Errorf("failed to allocate a registration id after %d attempts", s.opts.MaxIDAttempts)
}

// issueTicket generates and stores the ticket image on the record.
func (s *RegistrationService) issueTicket(ctx context.Context, registration *entity.Registration) (*string, bool) {
	image, err := s.tickets.Issue(registration.RegistrationID)
	if err != nil {
		s.logger.Errorf("(registration: %s) failed to generate ticket: %v", registration.RegistrationID, err)
		return nil, false
	}
	if err = s.storage.SetQRCodeImage(ctx, registration.RegistrationID, image); err != nil {
		s.logger.Errorf("(registration: %s) failed to store ticket: %v", registration.RegistrationID, err)
	}
	registration.QRCodeImage = &image
	return &image, true
}

// SetPaymentStatus records the admin's payment decision. Verifying (re)issues the ticket.
// The participant is notified of verified and rejected decisions.
func (s *RegistrationService) SetPaymentStatus(ctx context.Context, registrationID string, status entity.PaymentStatus) (*dto.StatusUpdateResult, error) {
	if !status.Valid() {
		return nil, errorz.Validation("invalid payment status %q", status)
	}

	if _, err := s.Get(ctx, registrationID); err != nil {
		return nil, err
	}

	var warnings []string
	var image *string
	if status == entity.PaymentVerified {
		generated, err := s.tickets.Issue(registrationID)
		if err != nil {
			s.logger.Errorf("(registration: %s) failed to generate ticket: %v", registrationID, err)
			warnings = append(warnings, WarningTicket)
		} else {
			image = &generated
		}
	}

	registration, err := s.storage.UpdatePaymentStatus(ctx, registrationID, status, image)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorz.NotFound("registration %s not found", registrationID)
		}
		return nil, fmt.Errorf("failed to update payment status: %w", err)
	}
	s.metrics.PaymentStatusChanged(string(status))
	s.logger.Infof("(registration: %s) payment status set to %s", registrationID, status)

	if status == entity.PaymentVerified || status == entity.PaymentRejected {
		if err = s.notifier.PaymentStatus(ctx, registration); err != nil {
			s.logger.Errorf("(registration: %s) failed to send status notification: %v", registrationID, err)
			warnings = append(warnings, WarningStatusEmail)
		}
	}

	return &dto.StatusUpdateResult{
		Registration: registration,
		Warnings:     warnings,
	}, nil
}

// Get returns the stored record as is.
func (s *RegistrationService) Get(ctx context.Context, registrationID string) (*entity.Registration, error) {
	registration, err := s.storage.Get(ctx, registrationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorz.NotFound("registration %s not found", registrationID)
		}
		return nil, err
	}
	return registration, nil
}

// GetByIdWithTicket returns the record. A verified record without a ticket gets one
// generated and stored; if that fails the record is still returned.
func (s *RegistrationService) GetByIdWithTicket(ctx context.Context, registrationID string) (*entity.Registration, error) {
	registration, err := s.Get(ctx, registrationID)
	if err != nil {
		return nil, err
	}
	if registration.IsPaid() && !registration.HasTicket() {
		s.issueTicket(ctx, registration)
	}
	return registration, nil
}

// RegenerateTicket re-renders and stores the ticket of a verified registration.
func (s *RegistrationService) RegenerateTicket(ctx context.Context, registrationID string) (*entity.Registration, error) {
	registration, err := s.Get(ctx, registrationID)
	if err != nil {
		return nil, err
	}
	if !registration.IsPaid() {
		return nil, errorz.InvalidState("payment for %s is not verified", registrationID)
	}
	if _, ok := s.issueTicket(ctx, registration); !ok {
		return nil, errorz.Upstream("failed to generate ticket", nil)
	}
	return registration, nil
}

// VerifyEntry admits the ticket holder. The first successful call sets entryVerified and
// its timestamp; later calls report AlreadyVerified with the original timestamp.
func (s *RegistrationService) VerifyEntry(ctx context.Context, registrationID string, requesterIsAdmin bool) (*dto.EntryVerification, error) {
	_, verification, err := s.verifyEntry(ctx, registrationID, requesterIsAdmin)
	return verification, err
}

// VerifyEntryByTicketScan is VerifyEntry for a scanned ticket payload, returning the
// projection shown on the scanning device.
func (s *RegistrationService) VerifyEntryByTicketScan(ctx context.Context, payload string, requesterIsAdmin bool) (*dto.TicketScan, error) {
	registration, verification, err := s.verifyEntry(ctx, ParseTicket(payload), requesterIsAdmin)
	if err != nil {
		return nil, err
	}
	scan := dto.NewTicketScan(registration, *verification)
	return &scan, nil
}

func (s *RegistrationService) verifyEntry(ctx context.Context, registrationID string, requesterIsAdmin bool) (*entity.Registration, *dto.EntryVerification, error) {
	if !requesterIsAdmin {
		s.metrics.EntryChecked("unauthorized")
		return nil, nil, errorz.Unauthorized("admin access required")
	}

	registration, err := s.Get(ctx, registrationID)
	if err != nil {
		s.metrics.EntryChecked("not_found")
		return nil, nil, err
	}

	for {
		if !registration.IsPaid() {
			s.metrics.EntryChecked("unpaid")
			return nil, nil, errorz.InvalidState("payment for %s is not verified", registrationID)
		}
		if registration.EntryVerified {
			s.metrics.EntryChecked("already_verified")
			return registration, alreadyVerified(registration), nil
		}

		at := s.now().UTC().Truncate(time.Microsecond)
		ok, err := s.storage.MarkEntryVerified(ctx, registrationID, at)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to verify entry: %w", err)
		}
		if ok {
			registration.EntryVerified = true
			registration.EntryTimestamp = &at
			s.metrics.EntryChecked("verified")
			s.logger.Infof("(registration: %s) entry verified", registrationID)
			return registration, &dto.EntryVerification{
				RegistrationID: registrationID,
				Name:           registration.Name,
				Timestamp:      at,
			}, nil
		}

		// lost a race or the status changed underneath; decide from the current row
		if registration, err = s.Get(ctx, registrationID); err != nil {
			return nil, nil, err
		}
		if !registration.EntryVerified && registration.IsPaid() {
			return nil, nil, fmt.Errorf("entry update for %s did not apply", registrationID)
		}
	}
}

func alreadyVerified(registration *entity.Registration) *dto.EntryVerification {
	v := &dto.EntryVerification{
		RegistrationID:  registration.RegistrationID,
		Name:            registration.Name,
		AlreadyVerified: true,
	}
	if registration.EntryTimestamp != nil {
		v.Timestamp = *registration.EntryTimestamp
	}
	return v
}

// List returns all registrations, newest first.
func (s *RegistrationService) List(ctx context.Context) ([]entity.Registration, error) {
	return s.storage.GetAll(ctx)
}

// Stats returns registration counts per payment status.
func (s *RegistrationService) Stats(ctx context.Context) (map[entity.PaymentStatus]int64, error) {
	return s.storage.CountByStatus(ctx)
}

// Export renders all registrations as an XLSX workbook.
func (s *RegistrationService) Export(ctx context.Context) (*bytes.Buffer, error) {
	registrations, err := s.storage.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	return registrationsToXLSX(registrations)
}

func registrationsToXLSX(registrations []entity.Registration) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := "Sheet1"
	headers := []string{
		"Registration ID", "Name", "Age", "Gender", "Email", "Phone", "Education",
		"Categories", "UTR ID", "Amount", "Payment Status", "Entry Verified", "Entry Time", "Registered At",
	}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, header)
	}

	loc := location.Location()
	for i, r := range registrations {
		row := strconv.Itoa(i + 2)
		entryTime := ""
		if r.EntryTimestamp != nil {
			entryTime = r.EntryTimestamp.In(loc).Format("2006-01-02 15:04:05")
		}
		values := []interface{}{
			r.RegistrationID, r.Name, r.Age, string(r.Gender), r.Email, r.Phone, string(r.EducationStatus),
			r.ParticipationCategories.String(), r.UtrID, r.TotalAmount, string(r.PaymentStatus), r.EntryVerified, entryTime,
			r.RegistrationDate.In(loc).Format("2006-01-02 15:04:05"),
		}
		for j, v := range values {
			col, _ := excelize.ColumnNumberToName(j + 1)
			_ = f.SetCellValue(sheet, col+row, v)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return &buf, nil
}

type nopMetrics struct{}

func (nopMetrics) RegistrationCreated()        {}
func (nopMetrics) PaymentStatusChanged(string) {}
func (nopMetrics) EntryChecked(string)         {}
