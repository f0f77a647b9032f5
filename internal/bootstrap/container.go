package bootstrap

import (
	"context"
	"log"
	"strings"

	"qbwc-sync-be/internal/config"
	"qbwc-sync-be/internal/controller"
	"qbwc-sync-be/internal/pkg/logger"
	"qbwc-sync-be/internal/pkg/mailer"
	"qbwc-sync-be/internal/pkg/serverutils"
	"qbwc-sync-be/internal/repository/memory"
	"qbwc-sync-be/internal/repository/unitofwork"
	"qbwc-sync-be/internal/service"
	pktNats "qbwc-sync-be/pkg/nats"
	"qbwc-sync-be/pkg/reconcile"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	QBWCController   controller.IQBWCController
	SyncController   controller.ISyncController
	HealthController controller.IHealthController

	// API authentication for the collaborator endpoints
	AuthMiddleware fiber.Handler

	// Background Services (Exposed for main.go to run)
	AuditConsumer service.IAuditConsumerService

	Logger logger.ILogger
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.IsProduction())

	var emailService mailer.IEmailService
	if cfg.SMTP.Enabled() {
		emailService = mailer.NewEmailService(
			cfg.SMTP.Host,
			cfg.SMTP.Port,
			cfg.SMTP.Email,
			cfg.SMTP.Password,
			cfg.SMTP.Email,
			cfg.SMTP.SenderName,
		)
	}

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// NATS is optional; a nil publisher drops events.
	var natsPub *pktNats.Publisher
	if cfg.App.NatsURL != "" {
		pub, err := pktNats.NewPublisher(cfg.App.NatsURL)
		if err != nil {
			log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
		} else {
			natsPub = pub
		}
	}

	// 3. Sync domain
	engine := reconcile.NewEngine(reconcile.Config{
		AmountTolerance:   decimal.NewFromFloat(cfg.Reconcile.AmountTolerance),
		DateToleranceDays: cfg.Reconcile.DateToleranceDays,
		Threshold:         cfg.Reconcile.Threshold,
	})
	policy := reconcile.Policy{
		SkipAt:   cfg.Reconcile.SkipAt,
		UpdateAt: cfg.Reconcile.UpdateAt,
		ReviewAt: cfg.Reconcile.ReviewAt,
	}

	auditPublisher := service.NewAuditPublisherService(service.AuditTopic, pubSub, sysLogger)
	auditConsumer := service.NewAuditConsumerService(pubSub, service.AuditTopic, uowFactory, sysLogger)

	companyCache := memory.NewCompanyCache(cfg.WebConnector.CompanyCacheTTL)
	credentialService := service.NewCredentialService(
		uowFactory,
		companyCache,
		cfg.WebConnector.SharedSecret,
		cfg.WebConnector.CompanyFilePath,
	)
	queueService := service.NewSyncQueueService(
		uowFactory,
		sysLogger,
		cfg.WebConnector.AutoQueueLookback,
		cfg.WebConnector.MaxReturnedPerPull,
	)
	responseHandler := service.NewSyncResponseHandler(uowFactory, engine, policy, sysLogger)
	notifier := service.NewSyncNotifier(uowFactory, natsPub, emailService, cfg.SMTP.ReportRecipient, sysLogger)

	sessionService := service.NewSyncSessionService(
		uowFactory,
		credentialService,
		queueService,
		responseHandler,
		notifier,
		auditPublisher,
		sysLogger,
		service.SessionOptions{AutoQueue: cfg.WebConnector.AutoQueue},
	)
	webConnectorService := service.NewWebConnectorService(sessionService, sysLogger, service.WebConnectorOptions{
		ServerVersion: cfg.WebConnector.ServerVersion,
		QBXMLVersion:  cfg.WebConnector.QBXMLVersion,
	})
	triggerService := service.NewSyncTriggerService(
		uowFactory,
		queueService,
		sessionService,
		cfg.WebConnector.MaxReturnedPerPull,
	)

	if cfg.WebConnector.SharedSecret == "" {
		log.Println("[WARN] QBWC_SHARED_SECRET is empty; every Web Connector login will be rejected")
	}

	endpoint := strings.TrimRight(cfg.App.BaseURL, "/") + cfg.WebConnector.EndpointPath

	// 4. Controllers
	return &Container{
		QBWCController: controller.NewQBWCController(webConnectorService, cfg.WebConnector.EndpointPath, endpoint),
		SyncController: controller.NewSyncController(triggerService, controller.QWCOptions{
			AppName:          cfg.WebConnector.AppName,
			AppDescription:   cfg.WebConnector.AppDescription,
			EndpointURL:      endpoint,
			RunEveryNMinutes: cfg.WebConnector.RunEveryNMinutes,
		}),
		HealthController: controller.NewHealthController(func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		}),
		AuthMiddleware: serverutils.JwtMiddleware(cfg.App.JWTSecret),
		AuditConsumer:  auditConsumer,
		Logger:         sysLogger,
	}
}
