package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"github.com/windi9/dwc-pos/internal/application/auth"
	"github.com/windi9/dwc-pos/internal/application/usecase"
	"github.com/windi9/dwc-pos/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC      *auth.AuthUseCase
	Guard       Guard
	CompanyUC   *usecase.CompanyUseCase
	OutletUC    *usecase.OutletUseCase
	UserUC      *usecase.UserUseCase
	UOMUC       *usecase.UOMUseCase
	ProductUC   *usecase.ProductUseCase
	RoleUC      *usecase.RoleUseCase
	CORSOrigins string // separado por comas; "*" o vacío permite cualquiera
}

// Router registra middlewares y rutas de la API bajo /api/v1.
func Router(app *fiber.App, deps RouterDeps) {
	app.Use(requestid.New())
	app.Use(corsMiddleware(deps.CORSOrigins))

	api := app.Group("/api/v1")
	g := deps.Guard
	perm := func(capability entity.Capability) fiber.Handler { return RequirePermission(g, capability) }

	// Auth (público)
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup := api.Group("/auth")
	authGroup.Post("/register", authHandler.Register)
	authGroup.Get("/verify-email", authHandler.VerifyEmail)
	authGroup.Post("/token", authHandler.Token)
	authGroup.Post("/verify-login-code", authHandler.VerifyLoginCode)
	authGroup.Post("/pos-login", authHandler.PosLogin)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(g))
	protected.Get("/auth/me", authHandler.Me)

	companies := protected.Group("/companies")
	companyHandler := NewCompanyHandler(deps.CompanyUC)
	companies.Post("/", perm(entity.CapCreateCompany), companyHandler.Create)
	companies.Get("/", perm(entity.CapReadCompany), companyHandler.List)
	companies.Get("/:id", perm(entity.CapReadCompany), companyHandler.GetByID)
	companies.Put("/:id", perm(entity.CapUpdateCompany), companyHandler.Update)
	companies.Delete("/:id", perm(entity.CapDeleteCompany), companyHandler.Delete)

	outlets := protected.Group("/outlets")
	outletHandler := NewOutletHandler(deps.OutletUC)
	outlets.Post("/", perm(entity.CapCreateOutlet), outletHandler.Create)
	outlets.Get("/", perm(entity.CapReadOutlet), outletHandler.List)
	outlets.Get("/:id", perm(entity.CapReadOutlet), outletHandler.GetByID)
	outlets.Put("/:id", perm(entity.CapUpdateOutlet), outletHandler.Update)
	outlets.Delete("/:id", perm(entity.CapDeleteOutlet), outletHandler.Delete)

	users := protected.Group("/users")
	userHandler := NewUserHandler(deps.UserUC)
	users.Post("/", perm(entity.CapCreateUser), userHandler.Create)
	users.Get("/", perm(entity.CapReadUser), userHandler.List)
	users.Get("/:id", perm(entity.CapReadUser), userHandler.GetByID)
	users.Put("/:id", perm(entity.CapUpdateUser), userHandler.Update)
	users.Delete("/:id", perm(entity.CapDeleteUser), userHandler.Delete)
	// La propia cuenta puede cambiar su PIN; el caso de uso exige update_user para terceros.
	users.Put("/:id/pin", userHandler.SetPin)
	users.Post("/:id/roles/:role", perm(entity.CapManageRoles), userHandler.AssignRole)
	users.Delete("/:id/roles/:role", perm(entity.CapManageRoles), userHandler.RevokeRole)

	uoms := protected.Group("/uoms")
	uomHandler := NewUOMHandler(deps.UOMUC)
	uoms.Post("/", perm(entity.CapCreateUOM), uomHandler.Create)
	uoms.Get("/", perm(entity.CapReadUOM), uomHandler.List)
	uoms.Get("/:id", perm(entity.CapReadUOM), uomHandler.GetByID)
	uoms.Put("/:id", perm(entity.CapUpdateUOM), uomHandler.Update)
	uoms.Delete("/:id", perm(entity.CapDeleteUOM), uomHandler.Delete)

	products := protected.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC)
	products.Get("/price-list.pdf", perm(entity.CapReadProduct), productHandler.PriceList)
	products.Post("/", perm(entity.CapCreateProduct), productHandler.Create)
	products.Get("/", perm(entity.CapReadProduct), productHandler.List)
	products.Get("/:id", perm(entity.CapReadProduct), productHandler.GetByID)
	products.Put("/:id", perm(entity.CapUpdateProduct), productHandler.Update)
	products.Delete("/:id", perm(entity.CapDeleteProduct), productHandler.Delete)

	// Roles y permisos: lectura para cualquier cuenta autenticada, edición con manage_roles.
	roleHandler := NewRoleHandler(deps.RoleUC)
	protected.Get("/permissions", roleHandler.ListPermissions)
	roles := protected.Group("/roles")
	roles.Get("/", roleHandler.ListRoles)
	roles.Get("/:role/permissions", roleHandler.RolePermissions)
	roles.Post("/:role/permissions/:capability", perm(entity.CapManageRoles), roleHandler.Grant)
	roles.Delete("/:role/permissions/:capability", perm(entity.CapManageRoles), roleHandler.Revoke)
}

func corsMiddleware(origins string) fiber.Handler {
	cfg := cors.Config{
		AllowOrigins:  "*",
		AllowMethods:  "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization",
		ExposeHeaders: HeaderVerificationRequired + ", Content-Disposition, X-Request-ID",
	}
	if origins != "" && origins != "*" {
		cfg.AllowOrigins = origins
		cfg.AllowCredentials = true
	}
	return cors.New(cfg)
}
