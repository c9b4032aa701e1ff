package router

import (
	"time"

	"tillengine/internal/config"
	"tillengine/internal/handler"
	"tillengine/internal/middleware"
	"tillengine/internal/repository"
	"tillengine/internal/service"
	"tillengine/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, dispatcher *worker.Dispatcher) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Repositories ─────────────────────────────────────────────────────────
	userRepo := repository.NewUserRepository(db)
	variantRepo := repository.NewVariantRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	tillRepo := repository.NewTillRepository(db)
	accountRepo := repository.NewAccountRepository(db)
	clientRepo := repository.NewClientRepository(db)
	stockMovementRepo := repository.NewStockMovementRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	policy := service.NewPolicy()
	authSvc := service.NewAuthService(userRepo, cfg)
	resolver := service.NewComboResolver(variantRepo)
	stockSvc := service.NewStockService(variantRepo, stockMovementRepo, policy)
	tillSvc := service.NewTillService(tillRepo, accountRepo, policy, dispatcher)
	saleSvc := service.NewSaleService(orderRepo, variantRepo, accountRepo, clientRepo, tillRepo, resolver, stockSvc, tillSvc, policy)
	creditNoteSvc := service.NewCreditNoteService(orderRepo, accountRepo, clientRepo, tillRepo, resolver, stockSvc, policy)
	reconSvc := service.NewReconciliationService(tillRepo, orderRepo, clientRepo)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	usersH := handler.NewUsersHandler(authSvc)
	salesH := handler.NewSalesHandler(saleSvc, creditNoteSvc)
	tillH := handler.NewTillHandler(tillSvc, reconSvc)
	stockH := handler.NewStockHandler(stockSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb))

	// Auth (public)
	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Protected routes. The policy is the single source of truth for
	// which roles may hit which operation; RequireRole enforces it at
	// the edge and the services re-check it.
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	v1 := r.Group("/v1", jwtMW)
	{
		orders := v1.Group("/orders")
		{
			orders.POST("", middleware.RequireRole(policy.Roles(service.OpCreateSale)...), salesH.Create)
			orders.GET("", middleware.RequireRole(policy.Roles(service.OpCreateSale)...), salesH.List)
			orders.GET("/:id", middleware.RequireRole(policy.Roles(service.OpCreateSale)...), salesH.Get)
			orders.POST("/:id/reverse", middleware.RequireRole(policy.Roles(service.OpReverseSale)...), salesH.Reverse)
		}

		till := v1.Group("/till")
		{
			till.POST("/open", middleware.RequireRole(policy.Roles(service.OpOpenTill)...), tillH.Open)
			till.POST("/close", middleware.RequireRole(policy.Roles(service.OpCloseTill)...), tillH.Close)
			till.GET("/:id/report", middleware.RequireRole(policy.Roles(service.OpReconcileTill)...), tillH.Report)
			till.POST("/movement", middleware.RequireRole(policy.Roles(service.OpManualMovement)...), tillH.Movement)
			till.GET("/active", middleware.RequireRole(policy.Roles(service.OpOpenTill)...), tillH.Active)
			till.GET("/history", middleware.RequireRole(policy.Roles(service.OpManualMovement)...), tillH.History)
		}

		stock := v1.Group("/stock")
		{
			stock.POST("/movements", middleware.RequireRole(policy.Roles(service.OpAdjustStock)...), stockH.Adjust)
			stock.GET("/movements", middleware.RequireRole(policy.Roles(service.OpAdjustStock)...), stockH.Movements)
		}

		users := v1.Group("/users", middleware.RequireRole(policy.Roles(service.OpManageUsers)...))
		{
			users.POST("", usersH.Create)
			users.GET("", usersH.List)
			users.PUT("/:id", usersH.Update)
			users.DELETE("/:id", usersH.Deactivate)
			users.PATCH("/:id/reactivate", usersH.Reactivate)
		}
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
