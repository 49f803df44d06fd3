package wire

import (
	"Tipwall/internal/api"
	"Tipwall/internal/api/config"
	"Tipwall/internal/api/handler"
	"Tipwall/internal/job"
	"Tipwall/internal/pkg/cron"
	"Tipwall/internal/pkg/encrypt"
	"Tipwall/internal/pkg/kafka"
	"Tipwall/internal/pkg/ledger"
	"Tipwall/internal/pkg/security"
	"Tipwall/internal/repository"
	"Tipwall/internal/service"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ApplicationContainer 封装了应用运行所需的所有顶级组件
type ApplicationContainer struct {
	Router       *gin.Engine
	DB           *gorm.DB
	KafkaManager *kafka.ConsumerManager
	CronMgr      *cron.Manager
	Bus          *service.VisibilityBus
	Cache        *service.VisibilityCache
}

func BuildApplication(db *gorm.DB, cfg *config.Config, encryptor encrypt.Client, ledgerClient ledger.Client) (*ApplicationContainer, error) {
	contentRepo := repository.NewContentRepo(db)
	eventRepo := repository.NewVisibilityEventRepo(db)
	engagementRepo := repository.NewEngagementRepo(db)
	statsRepo := repository.NewPostStatsRepository(db)
	sessionRepo := repository.NewUserSessionRepo(db)
	accessRepo := repository.NewAccessRepo(db)

	cipher, err := security.NewContentCipher(cfg.Security.ContentKey)
	if err != nil {
		return nil, err
	}
	tokens := security.NewTokenIssuer(cfg.Security.JWTSecret, time.Duration(cfg.Security.JWTExpireHours)*time.Hour)

	visibilityCache := service.NewVisibilityCache(cfg.VisibilityTTL())
	bus := service.NewVisibilityBus(visibilityCache)

	visibilityService := service.NewVisibilityService(eventRepo, visibilityCache, bus)
	accessService := service.NewAccessService(visibilityService, accessRepo)
	engagementService := service.NewEngagementService(engagementRepo, statsRepo)
	contentService := service.NewContentService(contentRepo, cipher, encryptor, ledgerClient,
		visibilityService, accessService, engagementService, service.PipelineOptionsFromConfig(cfg.Pipeline))
	feedService := service.NewFeedService(contentRepo, engagementService, accessService, cipher)
	userService := service.NewUserService(sessionRepo, encryptor, ledgerClient, tokens, service.RedisNonceStore{})
	paymentService := service.NewPaymentService(contentService, accessService, visibilityService, accessRepo, encryptor, ledgerClient)

	handlers := &api.HandlersGroup{
		UserHandler:       handler.NewUserHandler(userService),
		ContentHandler:    handler.NewContentHandler(contentService, feedService),
		VisibilityHandler: handler.NewVisibilityHandler(visibilityService, accessService, contentService),
		EngagementHandler: handler.NewEngagementHandler(engagementService),
		PaymentHandler:    handler.NewPaymentHandler(paymentService),
		WsHandler:         handler.NewWsHandler(bus),
	}

	router := api.SetupRouter(handlers, cfg.Server.AllowedOrigins, tokens, userService)

	kafkaMgr, err := kafka.NewConsumerManager(cfg, service.RedisFanout{}, service.RedisDirtyMarker{})
	if err != nil {
		return nil, err
	}

	cronMgr := cron.NewCronManager(cfg.Cron,
		job.NewStatsSyncJob(engagementService, contentService),
		job.NewStatsRepairJob(engagementService),
	)

	return &ApplicationContainer{
		Router:       router,
		DB:           db,
		KafkaManager: kafkaMgr,
		CronMgr:      cronMgr,
		Bus:          bus,
		Cache:        visibilityCache,
	}, nil
}
