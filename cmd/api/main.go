package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	_ "github.com/windi9/dwc-pos/docs"
	"github.com/windi9/dwc-pos/internal/application/auth"
	"github.com/windi9/dwc-pos/internal/application/usecase"
	"github.com/windi9/dwc-pos/internal/domain/repository"
	"github.com/windi9/dwc-pos/internal/infrastructure/notification"
	infrapdf "github.com/windi9/dwc-pos/internal/infrastructure/pdf"
	"github.com/windi9/dwc-pos/internal/infrastructure/postgres"
	"github.com/windi9/dwc-pos/internal/infrastructure/postgres/migrations"
	infraredis "github.com/windi9/dwc-pos/internal/infrastructure/redis"
	httpRouter "github.com/windi9/dwc-pos/internal/interfaces/http"
	"github.com/windi9/dwc-pos/pkg/config"
	"github.com/windi9/dwc-pos/pkg/jwt"
	"github.com/windi9/dwc-pos/pkg/logger"
)

// @title                       DWC POS API
// @version                     1.0
// @description                 Back office multi-empresa del punto de venta: cuentas, roles y catálogo.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	if cfg.DB.AutoMigrate {
		migrator, err := postgres.NewMigrator(pool, migrations.FS, log)
		if err != nil {
			log.Fatal().Err(err).Msg("cargar migraciones")
		}
		n, err := migrator.Up(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("aplicar migraciones")
		}
		log.Info().Int("applied", n).Msg("migraciones al día")
	}

	companyRepo := postgres.NewCompanyRepository(pool)
	outletRepo := postgres.NewOutletRepository(pool)
	userRepo := postgres.NewUserRepository(pool)
	roleRepo := postgres.NewRoleRepository(pool)
	uomRepo := postgres.NewUOMRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	// Códigos de login: Redis si está configurado, si no la tabla verification_tokens.
	var loginCodes repository.VerificationRepository = postgres.NewVerificationRepository(pool)
	if cfg.Redis.URL != "" {
		rdb, err := infraredis.NewClient(ctx, cfg.Redis.URL)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		defer rdb.Close()
		loginCodes = infraredis.NewLoginCodeStore(rdb)
		log.Info().Msg("códigos de login en Redis")
	}

	var notifier auth.Notifier
	var smtp *notification.SMTPNotifier
	if cfg.Mail.Enabled() {
		smtp = notification.NewSMTPNotifier(cfg.Mail, cfg.App.Name, log)
		notifier = smtp
	} else {
		log.Warn().Msg("SMTP no configurado: los emails solo se registran en el log")
		notifier = notification.NewLogNotifier(log)
	}

	tokens, err := jwt.NewIssuer(jwt.Config{
		Secret:    cfg.JWT.Secret,
		Algorithm: cfg.JWT.Algorithm,
		Issuer:    cfg.JWT.Issuer,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("configurar JWT")
	}
	creds := auth.NewCredentialStore(cfg.Security.BcryptCost)
	guard := auth.NewGuard(userRepo, roleRepo, tokens, log)

	authUC := auth.NewAuthUseCase(auth.Deps{
		Users:       userRepo,
		Roles:       roleRepo,
		LoginCodes:  loginCodes,
		Tx:          txRunner,
		Credentials: creds,
		Tokens:      tokens,
		Notifier:    notifier,
		Log:         log,
	}, auth.Config{
		BackOfficeTTL: time.Duration(cfg.JWT.Expiration) * time.Minute,
		POSTTL:        time.Duration(cfg.JWT.POSExpiration) * time.Minute,
		ActivationTTL: time.Duration(cfg.Security.ActivationTTLHours) * time.Hour,
		LoginCodeTTL:  time.Duration(cfg.Security.LoginCodeTTLMinutes) * time.Minute,
		PublicBaseURL: cfg.App.PublicURL,
	})
	userUC := usecase.NewUserUseCase(usecase.UserDeps{
		Users:       userRepo,
		Roles:       roleRepo,
		Companies:   companyRepo,
		Outlets:     outletRepo,
		Tx:          txRunner,
		Credentials: creds,
		Authorizer:  guard,
		Log:         log,
	})

	// PDF: lista de precios del catálogo activo
	pdfGenerator := infrapdf.NewPriceListGenerator()

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "DWC POS API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		if err := pool.Ping(c.UserContext()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded", "service": cfg.App.Name})
		}
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:      authUC,
		Guard:       guard,
		CompanyUC:   usecase.NewCompanyUseCase(companyRepo),
		OutletUC:    usecase.NewOutletUseCase(outletRepo, companyRepo),
		UserUC:      userUC,
		UOMUC:       usecase.NewUOMUseCase(uomRepo, companyRepo),
		ProductUC:   usecase.NewProductUseCase(productRepo, uomRepo, companyRepo, pdfGenerator),
		RoleUC:      usecase.NewRoleUseCase(roleRepo),
		CORSOrigins: cfg.HTTP.CORSOriginList(),
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}
	if smtp != nil {
		smtp.Wait()
	}

	log.Info().Msg("aplicación detenida")
}
