package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/fasevent/registrations/internal/domain/entity"
	"github.com/fasevent/registrations/pkg/logger/types"
	tele "gopkg.in/telebot.v3"
)

type statsService interface {
	Stats(ctx context.Context) (map[entity.PaymentStatus]int64, error)
}

type sender interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
}

// PendingScheduler periodically reminds the alerts chat about payments waiting for review.
type PendingScheduler struct {
	logger       *types.Logger
	statsService statsService
	bot          sender
	chat         tele.Recipient
	interval     time.Duration
}

func NewPendingScheduler(logger *types.Logger, statsService statsService, bot sender, chatID int64, interval time.Duration) *PendingScheduler {
	return &PendingScheduler{
		logger:       logger,
		statsService: statsService,
		bot:          bot,
		chat:         &tele.Chat{ID: chatID},
		interval:     interval,
	}
}

func (s *PendingScheduler) periodicallySendPendingDigest(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := s.sendPendingDigest(ctx); err != nil {
				s.logger.Errorf("failed to send pending payments digest: %v", err)
			}
		case <-ctx.Done():
			return
		}
	}
}

// sendPendingDigest sends nothing when there are no pending payments.
func (s *PendingScheduler) sendPendingDigest(ctx context.Context) error {
	counts, err := s.statsService.Stats(ctx)
	if err != nil {
		return err
	}
	pending := counts[entity.PaymentPending]
	if pending == 0 {
		return nil
	}

	_, err = s.bot.Send(s.chat, fmt.Sprintf("⏳ %d payment(s) waiting for verification", pending))
	return err
}

func (s *PendingScheduler) Start(ctx context.Context) {
	if s.interval <= 0 {
		return
	}
	s.logger.Infof("Starting pending payments scheduler, interval %s", s.interval)
	go s.periodicallySendPendingDigest(ctx)
}
