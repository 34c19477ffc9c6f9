package public

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fasevent/registrations/internal/domain/common/errorz"
	"github.com/fasevent/registrations/internal/domain/dto"
	"github.com/fasevent/registrations/internal/domain/entity"
	"github.com/fasevent/registrations/pkg/logger"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockServices struct {
	mock.Mock
}

func (m *mockServices) Lookup(ctx context.Context, flags entity.Categories) (*dto.PaymentQRLookup, error) {
	args := m.Called(ctx, flags)
	lookup, _ := args.Get(0).(*dto.PaymentQRLookup)
	return lookup, args.Error(1)
}

func (m *mockServices) Get(ctx context.Context) (*entity.CategoryCost, error) {
	args := m.Called(ctx)
	cost, _ := args.Get(0).(*entity.CategoryCost)
	return cost, args.Error(1)
}

func (m *mockServices) UploadImage(ctx context.Context, filename string, data []byte) (string, error) {
	args := m.Called(ctx, filename, data)
	return args.String(0), args.Error(1)
}

func (m *mockServices) Send(ctx context.Context, email, name string) error {
	return m.Called(ctx, "send", email, name).Error(0)
}

func (m *mockServices) Resend(ctx context.Context, email, name string) error {
	return m.Called(ctx, "resend", email, name).Error(0)
}

func (m *mockServices) Verify(ctx context.Context, email, otp string) error {
	return m.Called(ctx, "verify", email, otp).Error(0)
}

func newApp(m *mockServices) *fiber.App {
	app := fiber.New()
	New(logger.Nop(), m, m, m, m).Setup(app.Group("/api"))
	return app
}

func do(t *testing.T, app *fiber.App, req *http.Request) (int, map[string]interface{}) {
	t.Helper()
	resp, err := app.Test(req)
	require.NoError(t, err)
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body
}

func TestPaymentQR(t *testing.T) {
	m := &mockServices{}
	app := newApp(m)

	m.On("Lookup", mock.Anything, entity.Categories{ModelWalk: true, MovieSelection: true}).Return(&dto.PaymentQRLookup{
		ID:         2,
		ImageURL:   "https://storage.googleapis.com/fas/qr.png",
		ExactMatch: false,
	}, nil)
	m.On("Lookup", mock.Anything, entity.Categories{Dance: true}).Return(nil, errorz.NotFound("no payment QR code configured"))

	status, body := do(t, app, httptest.NewRequest("GET", "/api/payment-qr?modelWalk=true&dance=false&movieSelection=true", nil))
	assert.Equal(t, fiber.StatusOK, status)
	qr := body["qrCode"].(map[string]interface{})
	assert.Equal(t, "https://storage.googleapis.com/fas/qr.png", qr["imageUrl"])
	assert.Equal(t, false, qr["exactMatch"])

	status, _ = do(t, app, httptest.NewRequest("GET", "/api/payment-qr?dance=true", nil))
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestCosts(t *testing.T) {
	m := &mockServices{}
	m.On("Get", mock.Anything).Return(&entity.CategoryCost{ModelWalk: 5000, Dance: 4000, MovieSelection: 3000}, nil)

	status, body := do(t, newApp(m), httptest.NewRequest("GET", "/api/costs", nil))
	assert.Equal(t, fiber.StatusOK, status)
	costs := body["costs"].(map[string]interface{})
	assert.Equal(t, float64(3000), costs["movieSelection"])
}

func TestUpload(t *testing.T) {
	m := &mockServices{}
	app := newApp(m)
	data := []byte("\x89PNG\r\n\x1a\nrest-of-image")
	m.On("UploadImage", mock.Anything, "proof.png", data).Return("https://storage.googleapis.com/fas/abc.png", nil)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", "proof.png")
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/api/upload", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	status, body := do(t, app, req)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "https://storage.googleapis.com/fas/abc.png", body["url"])

	req = httptest.NewRequest("POST", "/api/upload", strings.NewReader("{}"))
	req.Header.Set("Content-Type", "application/json")
	status, body = do(t, app, req)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "No file provided", body["message"])
}

func TestVerifyEmail(t *testing.T) {
	m := &mockServices{}
	app := newApp(m)
	m.On("Send", mock.Anything, "send", "jane@example.com", "Jane").Return(nil)
	m.On("Verify", mock.Anything, "verify", "jane@example.com", "123456").Return(nil)
	m.On("Verify", mock.Anything, "verify", "jane@example.com", "000000").Return(errorz.Validation("invalid verification code"))
	m.On("Resend", mock.Anything, "resend", "jane@example.com", "").Return(nil)

	request := func(method, body string) *http.Request {
		req := httptest.NewRequest(method, "/api/verify-email", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		return req
	}

	status, _ := do(t, app, request("POST", `{"email": "jane@example.com", "name": "Jane"}`))
	assert.Equal(t, fiber.StatusOK, status)

	status, body := do(t, app, request("PUT", `{"email": "jane@example.com", "otp": "123456"}`))
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, true, body["verified"])

	status, body = do(t, app, request("PUT", `{"email": "jane@example.com", "otp": "000000"}`))
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "invalid verification code", body["message"])

	status, _ = do(t, app, request("PATCH", `{"email": "jane@example.com"}`))
	assert.Equal(t, fiber.StatusOK, status)
	m.AssertExpectations(t)
}
