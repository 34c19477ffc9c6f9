package app

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/fasevent/registrations/internal/adapters/config"
	"github.com/fasevent/registrations/internal/adapters/controller/http/response"
	"github.com/fasevent/registrations/internal/adapters/database/postgres"
	"github.com/fasevent/registrations/internal/adapters/metrics"
	"github.com/fasevent/registrations/internal/domain/dto"
	"github.com/fasevent/registrations/internal/domain/service"
	"github.com/fasevent/registrations/pkg/logger"
	"github.com/fasevent/registrations/pkg/logger/types"
	qr "github.com/fasevent/registrations/pkg/qrcode"
	"github.com/fasevent/registrations/pkg/smtp"
	"github.com/fasevent/registrations/pkg/token"
	"github.com/gofiber/fiber/v2"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
	tele "gopkg.in/telebot.v3"
)

// Services are the domain services shared by the HTTP API and the bot.
type Services struct {
	Registration      *service.RegistrationService
	CategoryCost      *service.CategoryCostService
	PaymentQR         *service.PaymentQRService
	Auth              *service.AuthService
	EmailVerification *service.EmailVerificationService
	Upload            *service.UploadService
	Notify            *service.NotifyService
	Ticket            *service.TicketService
}

type App struct {
	HTTP     *fiber.App
	Bot      *tele.Bot
	Config   *config.Config
	Services Services
	Logger   *types.Logger
}

func New(cfg *config.Config) (*App, error) {
	appLogger, err := logger.Named("app")
	if err != nil {
		return nil, err
	}
	services, err := newServices(cfg)
	if err != nil {
		return nil, err
	}

	httpLogger, err := logger.Named("http")
	if err != nil {
		return nil, err
	}
	httpApp := fiber.New(fiber.Config{
		AppName:   "fas-registrations",
		BodyLimit: service.MaxUploadSize + 1<<20,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var fe *fiber.Error
			if errors.As(err, &fe) {
				return response.Error(c, fe.Code, fe.Message)
			}
			httpLogger.Errorf("%s %s: %v", c.Method(), c.Path(), err)
			return response.Error(c, fiber.StatusInternalServerError, "Internal server error")
		},
	})

	return &App{
		HTTP:     httpApp,
		Bot:      cfg.Bot,
		Config:   cfg,
		Services: services,
		Logger:   appLogger,
	}, nil
}

func named(name string) *types.Logger {
	l, err := logger.Named(name)
	if err != nil {
		logger.Log.Panicf("Failed to create %s logger: %v", name, err)
	}
	return l
}

func event() dto.Event {
	return dto.Event{
		ID:          viper.GetString("event.id"),
		Name:        viper.GetString("event.name"),
		Description: viper.GetString("event.description"),
		Location:    viper.GetString("event.venue"),
		StartTime:   viper.GetTime("event.start"),
		EndTime:     viper.GetTime("event.end"),
	}
}

func newServices(cfg *config.Config) (Services, error) {
	recorder := metrics.Recorder{}

	codec, err := token.NewCodec(viper.GetString("admin.token-secret"), viper.GetDuration("admin.token-ttl"))
	if err != nil {
		return Services{}, err
	}

	tickets := service.NewTicketService(qr.Ticket, viper.GetString("http.app-base-url"), viper.GetString("ticket.logo-path"))

	// a nil *tele.Bot must not end up in a non-nil interface
	var bot service.TelegramBot
	if cfg.Bot != nil {
		bot = cfg.Bot
	}
	mailer := smtp.NewClient(cfg.SMTPDialer, viper.GetString("service.smtp.email"), viper.GetString("service.smtp.domain"))
	notify, err := service.NewNotifyService(named("notify"), mailer, tickets, bot, recorder, service.NotifyOptions{
		AppBaseURL:      viper.GetString("http.app-base-url"),
		AdminEmail:      viper.GetString("admin.email"),
		Event:           event(),
		AlertsChatID:    viper.GetInt64("bot.alerts-chat-id"),
		VerificationTTL: viper.GetDuration("verification.code-ttl"),
	})
	if err != nil {
		return Services{}, err
	}

	costs := service.NewCategoryCostService(
		named("costs"),
		postgres.NewCategoryCostStorage(cfg.Database),
		cfg.Redis.Costs,
		viper.GetInt64("costs.default"),
	)

	emailVerification := service.NewEmailVerificationService(
		named("verification"),
		cfg.Redis.Codes,
		cfg.Redis.Emails,
		notify,
		viper.GetDuration("verification.code-ttl"),
		viper.GetDuration("verification.verified-ttl"),
	)

	registration := service.NewRegistrationService(
		named("registration"),
		postgres.NewRegistrationStorage(cfg.Database),
		costs,
		tickets,
		notify,
		emailVerification,
		recorder,
		service.RegistrationOptions{
			RequireVerifiedEmail: viper.GetBool("settings.require-email-verification"),
		},
	)

	return Services{
		Registration:      registration,
		CategoryCost:      costs,
		PaymentQR:         service.NewPaymentQRService(named("payment-qr"), postgres.NewPaymentQRStorage(cfg.Database), cfg.Storage),
		Auth:              service.NewAuthService(named("auth"), codec, viper.GetString("admin.password"), viper.GetString("admin.password-hash")),
		EmailVerification: emailVerification,
		Upload:            service.NewUploadService(named("upload"), cfg.Storage),
		Notify:            notify,
		Ticket:            tickets,
	}, nil
}

// Ping checks the database connection.
func (a *App) Ping(ctx context.Context) error {
	sqlDB, err := a.Config.Database.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (a *App) setLogHook() {
	if !viper.GetBool("settings.logging.log-to-channel") {
		return
	}
	logHook, err := a.Services.Notify.LogHook(
		viper.GetInt64("settings.logging.channel-id"),
		zapcore.Level(viper.GetInt("settings.logging.channel-log-level")),
	)
	if err != nil {
		a.Logger.Errorf("Failed to create notify log hook: %v", err)
		return
	}
	logger.SetLogHook(logHook)
}

// Start runs the HTTP server and, if configured, the bot until SIGINT or SIGTERM.
func (a *App) Start() {
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		addr := viper.GetString("http.addr")
		a.Logger.Infof("HTTP server listening on %s", addr)
		if err := a.HTTP.Listen(addr); err != nil {
			a.Logger.Errorf("HTTP server stopped: %v", err)
		}
	}()

	if a.Bot != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			a.setLogHook()
			a.Logger.Info("Bot starting")
			a.Bot.Start()
		}()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	a.Logger.Info("Shutting down")
	a.shutdown()

	wg.Wait()
}

func (a *App) shutdown() {
	if err := a.HTTP.ShutdownWithTimeout(10 * time.Second); err != nil {
		a.Logger.Errorf("Failed to stop HTTP server: %v", err)
	}
	if a.Bot != nil {
		a.Bot.Stop()
	}
	if err := a.Config.Redis.Close(); err != nil {
		a.Logger.Errorf("Failed to close redis: %v", err)
	}
	if sqlDB, err := a.Config.Database.DB(); err == nil {
		if err = sqlDB.Close(); err != nil {
			a.Logger.Errorf("Failed to close database: %v", err)
		}
	}
	_ = logger.Log.Sync()
}
