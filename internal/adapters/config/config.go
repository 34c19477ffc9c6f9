package config

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	postgresStorage "github.com/fasevent/registrations/internal/adapters/database/postgres"
	"github.com/fasevent/registrations/internal/adapters/database/redis"
	"github.com/fasevent/registrations/internal/adapters/storage/gcs"
	"github.com/fasevent/registrations/internal/domain/utils/location"
	"github.com/fasevent/registrations/pkg/logger"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/gomail.v2"
	tele "gopkg.in/telebot.v3"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

type Config struct {
	Database   *gorm.DB
	Redis      *redis.Client
	SMTPDialer *gomail.Dialer
	Storage    *gcs.Storage
	// Bot is nil when bot.token is not set.
	Bot *tele.Bot
}

func initConfig() {
	// .env is optional; values from it are picked up through AutomaticEnv
	_ = godotenv.Load()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			panic(err)
		}
	}
}

func setDefaults() {
	viper.SetDefault("settings.timezone", "Asia/Kolkata")
	viper.SetDefault("settings.logs-dir", "logs")
	viper.SetDefault("settings.logging.channel-log-level", 2)

	viper.SetDefault("service.database.port", 5432)
	viper.SetDefault("service.database.sslmode", "disable")
	viper.SetDefault("service.redis.port", "6379")
	viper.SetDefault("service.redis.costs-ttl", "5m")
	viper.SetDefault("service.smtp.port", 587)
	viper.SetDefault("service.storage.public-base-url", "https://storage.googleapis.com")

	viper.SetDefault("http.addr", ":3000")
	viper.SetDefault("http.cors-origins", "http://localhost:3000")
	viper.SetDefault("http.app-base-url", "http://localhost:3000")
	viper.SetDefault("http.secure-cookie", false)

	viper.SetDefault("admin.token-ttl", "24h")
	viper.SetDefault("costs.default", 5000)
	viper.SetDefault("verification.code-ttl", "10m")
	viper.SetDefault("verification.verified-ttl", "24h")

	viper.SetDefault("bot.pending-digest-interval", "6h")
}

func Get() *Config {
	initConfig()

	err := logger.Init(logger.Config{
		Debug:        viper.GetBool("settings.debug"),
		TimeLocation: location.Location(),
		LogToFile:    viper.GetBool("settings.log-to-file"),
		LogsDir:      viper.GetString("settings.logs-dir"),
		Service:      "fas",
	})
	if err != nil {
		panic(err)
	}

	var gormConfig *gorm.Config
	if viper.GetBool("settings.debug") {
		newLogger := gormLogger.New(
			log.New(os.Stdout, "\r\n", log.LstdFlags),
			gormLogger.Config{
				SlowThreshold: time.Second,
				LogLevel:      gormLogger.Info,
				Colorful:      true,
			},
		)
		gormConfig = &gorm.Config{
			Logger:         newLogger,
			TranslateError: true,
		}
	} else {
		gormConfig = &gorm.Config{
			Logger:         gormLogger.Default.LogMode(gormLogger.Warn),
			TranslateError: true,
		}
	}

	dsn := fmt.Sprintf("user=%s password=%s dbname=%s host=%s port=%d sslmode=%s TimeZone=UTC",
		viper.GetString("service.database.user"),
		viper.GetString("service.database.password"),
		viper.GetString("service.database.name"),
		viper.GetString("service.database.host"),
		viper.GetInt("service.database.port"),
		viper.GetString("service.database.sslmode"),
	)

	database, err := gorm.Open(postgres.Open(dsn), gormConfig)
	if err != nil {
		logger.Log.Panicf("Failed to connect to the database: %v", err)
	} else {
		logger.Log.Info("Successfully connected to the database")
	}

	errMigrate := database.AutoMigrate(postgresStorage.Migrations...)
	if errMigrate != nil {
		logger.Log.Panicf("Failed to migrate database: %v", errMigrate)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	redisClient, err := redis.New(ctx, redis.Options{
		Host:     viper.GetString("service.redis.host"),
		Port:     viper.GetString("service.redis.port"),
		Password: viper.GetString("service.redis.password"),
		CostsTTL: viper.GetDuration("service.redis.costs-ttl"),
	})
	if err != nil {
		logger.Log.Panicf("Failed to connect to redis: %v", err)
	} else {
		logger.Log.Info("Successfully connected to redis")
	}

	smtpDialer := gomail.NewDialer(
		viper.GetString("service.smtp.host"),
		viper.GetInt("service.smtp.port"),
		viper.GetString("service.smtp.user"),
		viper.GetString("service.smtp.password"),
	)

	blobStorage, err := gcs.New(ctx, gcs.Options{
		Bucket:          viper.GetString("service.storage.bucket"),
		CredentialsFile: viper.GetString("service.storage.credentials-file"),
		PublicBaseURL:   viper.GetString("service.storage.public-base-url"),
	})
	if err != nil {
		logger.Log.Panicf("Failed to create blob storage client: %v", err)
	}

	return &Config{
		Database:   database,
		Redis:      redisClient,
		SMTPDialer: smtpDialer,
		Storage:    blobStorage,
		Bot:        newBot(),
	}
}

func newBot() *tele.Bot {
	token := viper.GetString("bot.token")
	if token == "" {
		logger.Log.Info("bot.token is not set, Telegram bot disabled")
		return nil
	}

	botLogger, err := logger.Named("bot")
	if err != nil {
		logger.Log.Panicf("Failed to create bot logger: %v", err)
	}

	b, err := tele.NewBot(tele.Settings{
		Token:  token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
		OnError: func(err error, c tele.Context) {
			if c == nil || c.Sender() == nil {
				botLogger.Errorf("Error: %v", err)
				return
			}
			botLogger.Errorf("(user: %d) | Error: %v", c.Sender().ID, err)
		},
	})
	if err != nil {
		logger.Log.Panicf("Failed to create Telegram bot: %v", err)
	}
	return b
}
