package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"gatehouse/config"
	"gatehouse/internal/delivery"
	"gatehouse/internal/delivery/http"
	httpmw "gatehouse/internal/delivery/http/middleware"
	"gatehouse/internal/delivery/http/router/handler"
	deliverymw "gatehouse/internal/delivery/middleware"
	"gatehouse/internal/domain/repository"
	"gatehouse/internal/infra/auth"
	logs "gatehouse/internal/infra/log"
	"gatehouse/internal/infra/persistence/postgres"
	"gatehouse/internal/infra/pubsub"
	redisinfra "gatehouse/internal/infra/redis"
	"gatehouse/internal/usecase"
	"gatehouse/internal/usecase/impl"

	"go.uber.org/fx"
)

type startServerParams struct {
	fx.In
	fx.Lifecycle

	Deliveries []delivery.Delivery `group:"deliveries"`
}

func main() {
	fx.New(
		injectInfra(),
		injectRepo(),
		injectService(),
		injectUsecase(),
		injectDelivery(),
		injectMiddleware(),
		injectHandler(),
		fx.Invoke(
			seedRoles,
			startTokenSweeper,
			startServer,
		),
	).Run()
}

func injectInfra() fx.Option {
	return fx.Provide(
		config.New,
		logs.New,
		context.Background,
		postgres.New,
		redisinfra.New,
	)
}

func injectRepo() fx.Option {
	return fx.Options(
		fx.Provide(
			postgres.NewUserRepository,
			postgres.NewRoleRepository,
			postgres.NewRefreshTokenRepository,
			postgres.NewTransactionManager,
		),
	)
}

func injectService() fx.Option {
	return fx.Options(
		fx.Provide(
			auth.NewBcryptHasher,
			auth.NewJWTService,
			redisinfra.NewLoginLimiter,
			pubsub.NewEventPublisher,
		),
	)
}

func injectUsecase() fx.Option {
	return fx.Options(
		fx.Provide(
			impl.NewSessionService,
			impl.NewUserService,
			impl.NewRoleService,
		),
	)
}

func injectMiddleware() fx.Option {
	return fx.Options(
		fx.Provide(
			httpmw.NewAuthMiddleware,
			httpmw.NewErrorMiddleware,
			deliverymw.NewRequestIDMiddleware,
			deliverymw.NewLoggerMiddleware,
		),
	)
}

func injectHandler() fx.Option {
	return fx.Options(
		fx.Provide(
			handler.NewAuthHandler,
			handler.NewUserHandler,
			handler.NewRoleHandler,
		),
	)
}

func injectDelivery() fx.Option {
	return fx.Options(
		fx.Provide(
			fx.Annotate(
				http.NewServer,
				fx.ResultTags(`group:"deliveries"`),
			),
		),
	)
}

// seedRoles guarantees the built-in roles exist before the server takes
// traffic.
func seedRoles(ctx context.Context, roleUC usecase.RoleUsecase) error {
	return roleUC.SeedSystemRoles(ctx)
}

// startTokenSweeper periodically clears expired refresh tokens. Expired
// rows are already unusable; the sweep only keeps the table small.
func startTokenSweeper(lc fx.Lifecycle, tokens repository.RefreshTokenRepository, logger *slog.Logger) {
	ctx, cancel := context.WithCancel(context.Background())

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				ticker := time.NewTicker(time.Hour)
				defer ticker.Stop()

				for {
					select {
					case <-ctx.Done():
						return
					case <-ticker.C:
						if err := tokens.DeleteExpired(ctx); err != nil {
							logger.Warn("Expired token sweep failed", slog.Any("error", err))
						}
					}
				}
			}()

			return nil
		},
		OnStop: func(context.Context) error {
			cancel()

			return nil
		},
	})
}

func startServer(ctx context.Context, params startServerParams) {
	for _, delivery := range params.Deliveries {
		go func() {
			if err := delivery.Serve(ctx); err != nil {
				slog.Error("Failed to start server", slog.Any("error", err))
				os.Exit(1)
			}
		}()
	}
}
