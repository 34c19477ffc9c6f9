package scheduler

import (
	"context"
	"errors"
	"testing"

	"github.com/fasevent/registrations/internal/domain/entity"
	"github.com/fasevent/registrations/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v3"
)

type staticStats struct {
	counts map[entity.PaymentStatus]int64
	err    error
}

func (s staticStats) Stats(context.Context) (map[entity.PaymentStatus]int64, error) {
	return s.counts, s.err
}

type recordingSender struct {
	sent []string
	to   []tele.Recipient
}

func (r *recordingSender) Send(to tele.Recipient, what interface{}, _ ...interface{}) (*tele.Message, error) {
	r.to = append(r.to, to)
	r.sent = append(r.sent, what.(string))
	return &tele.Message{}, nil
}

func TestSendPendingDigest(t *testing.T) {
	bot := &recordingSender{}
	s := NewPendingScheduler(logger.Nop(), staticStats{counts: map[entity.PaymentStatus]int64{
		entity.PaymentPending:  3,
		entity.PaymentVerified: 10,
	}}, bot, -100200, 0)

	require.NoError(t, s.sendPendingDigest(context.Background()))
	require.Len(t, bot.sent, 1)
	assert.Contains(t, bot.sent[0], "3 payment(s)")
	assert.Equal(t, "-100200", bot.to[0].Recipient())
}

func TestSendPendingDigestSkipsWhenNothingPending(t *testing.T) {
	bot := &recordingSender{}
	s := NewPendingScheduler(logger.Nop(), staticStats{counts: map[entity.PaymentStatus]int64{
		entity.PaymentVerified: 10,
	}}, bot, 1, 0)

	require.NoError(t, s.sendPendingDigest(context.Background()))
	assert.Empty(t, bot.sent)
}

func TestSendPendingDigestStatsError(t *testing.T) {
	boom := errors.New("db down")
	s := NewPendingScheduler(logger.Nop(), staticStats{err: boom}, &recordingSender{}, 1, 0)
	assert.ErrorIs(t, s.sendPendingDigest(context.Background()), boom)
}
