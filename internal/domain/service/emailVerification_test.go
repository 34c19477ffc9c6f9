package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/fasevent/registrations/internal/domain/common/errorz"
	"github.com/fasevent/registrations/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCodeStorage struct {
	mu    sync.Mutex
	codes map[string][2]string
}

func (f *fakeCodeStorage) Get(_ context.Context, email string) (string, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.codes[email]
	if !ok {
		return "", "", errorz.ErrCodeExpired
	}
	return c[0], c[1], nil
}

func (f *fakeCodeStorage) Set(_ context.Context, email, code, codeContext string, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.codes == nil {
		f.codes = make(map[string][2]string)
	}
	f.codes[email] = [2]string{code, codeContext}
	return nil
}

func (f *fakeCodeStorage) Clear(_ context.Context, email string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.codes, email)
	return nil
}

type capturingSender struct {
	email, name, code string
	err               error
}

func (c *capturingSender) EmailVerificationCode(_ context.Context, email, name, code string) error {
	c.email, c.name, c.code = email, name, code
	return c.err
}

func TestEmailVerificationFlow(t *testing.T) {
	codes := &fakeCodeStorage{}
	verified := &fakeVerifiedEmails{}
	sender := &capturingSender{}
	s := NewEmailVerificationService(logger.Nop(), codes, verified, sender, 0, 0)
	ctx := context.Background()

	require.NoError(t, s.Send(ctx, " Jane@Example.com ", "Jane"))
	assert.Equal(t, "jane@example.com", sender.email)
	assert.Regexp(t, `^[0-9]{6}$`, sender.code)

	err := s.Verify(ctx, "jane@example.com", "000000x")
	assert.Equal(t, errorz.KindValidation, errorz.KindOf(err))

	ok, err := s.IsVerified(ctx, "jane@example.com")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Verify(ctx, "JANE@example.com", sender.code))
	ok, err = s.IsVerified(ctx, "jane@example.com")
	require.NoError(t, err)
	assert.True(t, ok)

	err = s.Verify(ctx, "jane@example.com", sender.code)
	assert.Equal(t, errorz.KindValidation, errorz.KindOf(err), "code is consumed")
}

func TestEmailVerificationResendKeepsName(t *testing.T) {
	codes := &fakeCodeStorage{}
	sender := &capturingSender{}
	s := NewEmailVerificationService(logger.Nop(), codes, &fakeVerifiedEmails{}, sender, time.Minute, time.Hour)
	ctx := context.Background()

	require.NoError(t, s.Send(ctx, "jane@example.com", "Jane"))
	first := sender.code

	require.NoError(t, s.Resend(ctx, "jane@example.com", ""))
	assert.Equal(t, "Jane", sender.name)

	if first != sender.code {
		err := s.Verify(ctx, "jane@example.com", first)
		assert.Equal(t, errorz.KindValidation, errorz.KindOf(err))
	}
	require.NoError(t, s.Verify(ctx, "jane@example.com", sender.code))
}

func TestEmailVerificationSendErrors(t *testing.T) {
	codes := &fakeCodeStorage{}
	sender := &capturingSender{err: errUpstream}
	s := NewEmailVerificationService(logger.Nop(), codes, &fakeVerifiedEmails{}, sender, 0, 0)
	ctx := context.Background()

	err := s.Send(ctx, "not-an-email", "x")
	assert.Equal(t, errorz.KindValidation, errorz.KindOf(err))

	err = s.Send(ctx, "jane@example.com", "Jane")
	assert.Equal(t, errorz.KindUpstream, errorz.KindOf(err))
	assert.Empty(t, codes.codes)

	err = s.Verify(ctx, "jane@example.com", "123456")
	assert.Equal(t, errorz.KindValidation, errorz.KindOf(err))
}
