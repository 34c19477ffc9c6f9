package setup

import (
	"github.com/fasevent/registrations/cmd/app"
	"github.com/fasevent/registrations/internal/adapters/controller/http/handlers/admin"
	"github.com/fasevent/registrations/internal/adapters/controller/http/handlers/health"
	"github.com/fasevent/registrations/internal/adapters/controller/http/handlers/public"
	"github.com/fasevent/registrations/internal/adapters/controller/http/handlers/registration"
	"github.com/fasevent/registrations/internal/adapters/controller/http/middlewares"
	"github.com/fasevent/registrations/internal/adapters/metrics"
	"github.com/fasevent/registrations/pkg/logger"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberLogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/viper"
)

func Setup(a *app.App) {
	httpLogger, err := logger.Named("http")
	if err != nil {
		logger.Log.Panicf("Failed to create http logger: %v", err)
	}

	// Pre-setup and global middlewares
	a.HTTP.Use(recover.New())
	a.HTTP.Use(cors.New(cors.Config{
		AllowOrigins:     viper.GetString("http.cors-origins"),
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET,POST,HEAD,PUT,DELETE,PATCH",
		AllowCredentials: true,
	}))
	if viper.GetBool("settings.debug") {
		a.HTTP.Use(fiberLogger.New(fiberLogger.Config{
			Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
		}))
	}
	a.HTTP.Use(metrics.Middleware())

	// Public form posts only; the staff entry routes under /api/registration stay unthrottled
	limit := middlewares.RateLimit(20)
	a.HTTP.Use("/api/verify-email", limit)
	a.HTTP.Use("/api/admin/login", limit)

	middle := middlewares.New(httpLogger, a.Services.Auth)
	api := a.HTTP.Group("/api")

	registration.New(httpLogger, a.Services.Registration).Setup(api, middle, limit)
	public.New(
		httpLogger,
		a.Services.PaymentQR,
		a.Services.CategoryCost,
		a.Services.Upload,
		a.Services.EmailVerification,
	).Setup(api)
	admin.New(
		httpLogger,
		a.Services.Auth,
		a.Services.Registration,
		a.Services.CategoryCost,
		a.Services.PaymentQR,
		viper.GetBool("http.secure-cookie"),
	).Setup(api.Group("/admin"), middle)

	health.New(httpLogger, map[string]health.Pinger{
		"database": health.PingFunc(a.Ping),
		"redis":    a.Config.Redis,
	}).Setup(a.HTTP)
	a.HTTP.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
}
