package bootstrap

import (
	"context"
	"log"

	"subscout-be/internal/config"
	"subscout-be/internal/controller"
	"subscout-be/internal/pkg/logger"
	"subscout-be/internal/pkg/mailer"
	"subscout-be/internal/repository/unitofwork"
	"subscout-be/internal/service"
	"subscout-be/pkg/automation"
	"subscout-be/pkg/inbox"
	pktNats "subscout-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	ScanController         controller.IScanController
	SubscriptionController controller.ISubscriptionController
	UnsubscribeController  controller.IUnsubscribeController
	DetectionController    controller.IDetectionController
	ActivityController     controller.IActivityController
	UserController         controller.IUserController

	// Background services (exposed for main.go to run)
	ConsumerService service.IConsumerService
	MonitorService  service.IMonitorService

	Logger logger.ILogger
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	emailService := mailer.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Email,
		cfg.SMTP.Password,
		cfg.SMTP.SenderName,
	)

	// 2. Event bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 2.5 Infrastructure
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
	}

	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
		rdb = nil
	}

	summaryCache := service.NewSummaryCache(rdb, sysLogger)

	// Confirmation feed from the mail pipeline
	confirmationStore := inbox.NewStore(natsSub, sysLogger)
	if err := confirmationStore.Start(); err != nil {
		log.Printf("[WARN] Failed to start confirmation feed: %v", err)
	}

	capability := automation.NewHTTPCapability(cfg.Unsubscribe.RequestTimeout)

	// 3. Services
	publisherService := service.NewPublisherService(cfg.App.ClassifierTopic, pubSub)

	subscriptionService := service.NewSubscriptionService(uowFactory, natsPub, summaryCache, sysLogger)
	detectionService := service.NewDetectionService(uowFactory, subscriptionService, sysLogger)
	sessionService := service.NewSessionService(uowFactory, natsPub, sysLogger)
	unsubscribeService := service.NewUnsubscribeService(
		uowFactory,
		capability,
		emailService,
		natsPub,
		summaryCache,
		cfg.Unsubscribe,
		sysLogger,
	)
	monitorService := service.NewMonitorService(uowFactory, confirmationStore, unsubscribeService, sysLogger)
	activityService := service.NewActivityService(uowFactory)
	userService := service.NewUserService(uowFactory, summaryCache, sysLogger)

	consumerService := service.NewConsumerService(
		pubSub,
		cfg.App.ClassifierTopic,
		detectionService,
		sysLogger,
	)

	// 4. Controllers
	return &Container{
		ScanController:         controller.NewScanController(sessionService),
		SubscriptionController: controller.NewSubscriptionController(subscriptionService),
		UnsubscribeController:  controller.NewUnsubscribeController(unsubscribeService),
		DetectionController:    controller.NewDetectionController(publisherService),
		ActivityController:     controller.NewActivityController(activityService),
		UserController:         controller.NewUserController(userService),

		ConsumerService: consumerService,
		MonitorService:  monitorService,

		Logger: sysLogger,
	}
}
