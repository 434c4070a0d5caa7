package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	recoverMiddleware "github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/meinhoongagan/medical-turns/config"
	"github.com/meinhoongagan/medical-turns/controllers"
	"github.com/meinhoongagan/medical-turns/cron"
	"github.com/meinhoongagan/medical-turns/db"
	"github.com/meinhoongagan/medical-turns/events"
	"github.com/meinhoongagan/medical-turns/logger"
	"github.com/meinhoongagan/medical-turns/middleware"
	"github.com/meinhoongagan/medical-turns/redis"
	"github.com/meinhoongagan/medical-turns/repositories"
	"github.com/meinhoongagan/medical-turns/routes"
	"github.com/meinhoongagan/medical-turns/services"
	"github.com/meinhoongagan/medical-turns/utils"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "medical-turns",
		Short: "Medical turn booking API",
	}
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	var migrate bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server and the reminder scheduler",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(migrate)
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", true, "apply migrations before serving")
	return cmd
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			log := logger.New(cfg.Env, cfg.LogLevel)
			defer log.Sync()

			database, err := db.Open(cfg.DatabaseURL, log)
			if err != nil {
				return err
			}
			return db.Migrate(database, log)
		},
	}
}

func runServer(migrate bool) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logger.New(cfg.Env, cfg.LogLevel)
	defer log.Sync()

	database, err := db.Open(cfg.DatabaseURL, log)
	if err != nil {
		return err
	}
	if migrate {
		if err := db.Migrate(database, log); err != nil {
			return err
		}
	}

	ctx := context.Background()
	redisClient, err := redis.NewClient(ctx, cfg.RedisAddr, cfg.RedisPassword, log)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
	}
	locker := redis.NewLocker(redisClient, log)

	bus := events.NewBus(log)
	if cfg.RabbitMQURL != "" {
		forwarder, err := newForwarder(cfg, log)
		if err != nil {
			return err
		}
		defer forwarder.Close()
		bus.Subscribe("amqp", forwarder.Handle)
	}

	app, reminders := wire(cfg, log, database, locker, bus)

	scheduler, err := reminders.Start(cfg.ReminderCron)
	if err != nil {
		return err
	}

	go func() {
		addr := ":" + cfg.Port
		log.Info("starting server", zap.String("addr", addr))
		if err := app.Listen(addr); err != nil {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")
	<-scheduler.Stop().Done()
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Error("server shutdown failed", zap.Error(err))
	}
	bus.Wait()
	log.Info("server stopped")
	return nil
}

func newForwarder(cfg *config.Config, log *zap.Logger) (*events.AMQPForwarder, error) {
	conn, err := events.Dial(cfg.RabbitMQURL, log)
	if err != nil {
		return nil, err
	}
	forwarder, err := events.NewAMQPForwarder(conn, cfg.EventsExchange, log)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("amqp forwarder: %w", err)
	}
	return forwarder, nil
}

// wire builds repositories, services and the HTTP app on top of the shared infrastructure.
func wire(cfg *config.Config, log *zap.Logger, database *gorm.DB, locker redis.Locker, bus *events.Bus) (*fiber.App, *cron.Reminders) {
	loc := cfg.Location()

	tx := repositories.NewTransactor(database)
	turnRepo := repositories.NewTurnRepository(database)
	userRepo := repositories.NewUserRepository(database)

	var sender services.Sender
	if cfg.MailEnabled() {
		sender = utils.NewMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.EmailUser, cfg.EmailPass, cfg.EmailFrom)
	} else {
		log.Warn("SMTP is not configured; emails are disabled")
	}
	var uploader services.Uploader
	if cfg.CloudinaryEnabled() {
		cld, err := utils.NewCloudinaryUploader(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret,
			cfg.CloudinaryUploadPreset, cfg.CloudinaryFolder)
		if err != nil {
			log.Error("cloudinary is misconfigured; uploads are disabled", zap.Error(err))
		} else {
			uploader = cld
		}
	}

	booking := services.NewBookingService(services.BookingDeps{
		Transactor: tx,
		Turns:      turnRepo,
		Requests:   repositories.NewModifyRequestRepository(database),
		Ratings:    repositories.NewRatingRepository(database),
		Users:      userRepo,
		Locker:     locker,
		Events:     bus,
		Log:        log.Named("booking"),
		Location:   loc,
		LockTTL:    cfg.ReservationLockTTL(),
	})
	badges := services.NewBadgeService(tx, repositories.NewStatisticsRepository(database),
		repositories.NewBadgeRepository(database), log.Named("badges"), nil)
	notifications := services.NewNotificationService(repositories.NewNotificationRepository(database), log.Named("notifications"), loc)
	email := services.NewEmailService(sender, userRepo, log.Named("email"), loc)
	auth := services.NewAuthService(userRepo, email, bus, log.Named("auth"), cfg.JWTSecret, cfg.JWTTTL(), nil)
	doctors := services.NewDoctorService(userRepo, bus, log.Named("doctors"))
	files := services.NewPatientFileService(repositories.NewPatientFileRepository(database), uploader, bus, log.Named("files"))

	badges.Register(bus)
	notifications.Register(bus)
	email.Register(bus)

	app := fiber.New(fiber.Config{
		AppName:     "medical-turns",
		JSONEncoder: json.Marshal,
		JSONDecoder: json.Unmarshal,
		BodyLimit:   11 << 20,
	})
	app.Use(recoverMiddleware.New())
	app.Use(middleware.RequestLogger(log.Named("http")))
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: strings.Join([]string{fiber.HeaderOrigin, fiber.HeaderContentType, fiber.HeaderAccept, fiber.HeaderAuthorization}, ", "),
	}))
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	routes.Setup(app, routes.Handlers{
		Auth:          controllers.NewAuthController(auth, log),
		Turns:         controllers.NewTurnController(booking, log, loc),
		Requests:      controllers.NewModifyRequestController(booking, log),
		Ratings:       controllers.NewRatingController(booking, log),
		Doctors:       controllers.NewDoctorController(doctors, log),
		Badges:        controllers.NewBadgeController(badges, doctors, log),
		Notifications: controllers.NewNotificationController(notifications, log),
		Files:         controllers.NewPatientFileController(files, log),
	}, cfg.JWTSecret, log)

	return app, cron.NewReminders(turnRepo, locker, bus, log.Named("reminders"))
}
