//go:build wireinject
// +build wireinject

package di

import (
	"rally/config"
	"rally/infras/jwt"
	"rally/infras/kafka"
	"rally/infras/mailer"
	"rally/infras/otel"
	"rally/infras/postgres"
	"rally/infras/redis"
	"rally/infras/s3"
	"rally/internal/workers/delivery"
	"rally/permissions"
	"rally/shared/cache"
	"rally/shared/lock"
	"rally/transport/http"
	"rally/transport/http/middleware"
	"rally/transport/http/router"

	"github.com/google/wire"

	authService "rally/internal/domains/auth/service"
	bookingRepository "rally/internal/domains/booking/repository"
	bookingService "rally/internal/domains/booking/service"
	courtRepository "rally/internal/domains/court/repository"
	courtService "rally/internal/domains/court/service"
	notificationRepository "rally/internal/domains/notification/repository"
	notificationService "rally/internal/domains/notification/service"
	userRepository "rally/internal/domains/user/repository"
	authHandler "rally/internal/handlers/auth"
	bookingHandler "rally/internal/handlers/booking"
	courtHandler "rally/internal/handlers/court"
	notificationHandler "rally/internal/handlers/notification"
)

var configurations = wire.NewSet(
	config.Get,
	permissions.Get,
)

var infrastructures = wire.NewSet(
	postgres.New,
	wire.Bind(new(postgres.Transactor), new(*postgres.Connection)),
	otel.New,
	redis.New,
	jwt.New,
	kafka.New,
	s3.New,
)

var middlewares = wire.NewSet(
	middleware.NewAppMiddleware,
	middleware.NewAuthRoleMiddleware,
)

var sharedHelpers = wire.NewSet(
	cache.NewRedisCache,
	lock.NewKeyed,
)

var authDomain = wire.NewSet(
	userRepository.New,
	authService.New,
)

var courtDomain = wire.NewSet(
	courtRepository.New,
	courtService.New,
)

var bookingDomain = wire.NewSet(
	bookingRepository.New,
	bookingService.New,
)

var notificationDomain = wire.NewSet(
	notificationRepository.New,
	notificationService.New,
)

var domains = wire.NewSet(
	authDomain,
	courtDomain,
	bookingDomain,
	notificationDomain,
)

var routing = wire.NewSet(
	wire.Struct(new(router.DomainHandlers), "*"),
	authHandler.New,
	courtHandler.New,
	bookingHandler.New,
	notificationHandler.New,
	router.New,
)

func InitializeService() *http.HTTP {
	wire.Build(
		configurations,
		infrastructures,
		middlewares,
		sharedHelpers,
		domains,
		routing,
		http.New,
	)

	return &http.HTTP{}
}

func InitializeDeliveryWorker() *delivery.Worker {
	wire.Build(
		config.Get,
		otel.New,
		kafka.New,
		mailer.New,
		delivery.New,
	)

	return &delivery.Worker{}
}
