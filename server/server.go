package server

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anbusan19/nominal/config"
	authHandler "github.com/anbusan19/nominal/internal/handler/auth"
	claimHandler "github.com/anbusan19/nominal/internal/handler/claim"
	employeeHandler "github.com/anbusan19/nominal/internal/handler/employee"
	identityHandler "github.com/anbusan19/nominal/internal/handler/identity"
	organizationHandler "github.com/anbusan19/nominal/internal/handler/organization"
	payrollHandler "github.com/anbusan19/nominal/internal/handler/payroll"
	treasuryHandler "github.com/anbusan19/nominal/internal/handler/treasury"
	"github.com/anbusan19/nominal/internal/chain"
	"github.com/anbusan19/nominal/internal/repository"
	"github.com/anbusan19/nominal/internal/service/claim"
	"github.com/anbusan19/nominal/internal/service/ens"
	"github.com/anbusan19/nominal/internal/service/organization"
	"github.com/anbusan19/nominal/internal/service/payroll"
	"github.com/anbusan19/nominal/internal/service/treasury"
	"github.com/anbusan19/nominal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type RouterHandler struct {
	organizationHandler *organizationHandler.OrganizationHandler
	employeeHandler     *employeeHandler.EmployeeHandler
	identityHandler     *identityHandler.IdentityHandler
	claimHandler        *claimHandler.ClaimHandler
	treasuryHandler     *treasuryHandler.TreasuryHandler
	payrollHandler      *payrollHandler.PayrollHandler
	authHandler         *authHandler.AuthHandler
	jwtSecret           []byte
}

func RunServer(config *config.Config, logger *slog.Logger) {
	env := config.Env
	switch env {
	case "prod", "production":
		gin.SetMode(gin.ReleaseMode)
		log.Println("🚀 Starting server in PRODUCTION mode")
	case "dev", "development":
		gin.SetMode(gin.DebugMode)
		log.Println("🔧 Starting server in DEVELOPMENT mode")
	default:
		gin.SetMode(gin.DebugMode)
		log.Println("🔧 Starting server in DEVELOPMENT mode (default)")
	}

	db, err := repository.NewRepository(config.DB)
	if err != nil {
		log.Fatal("❌ Failed to connect to database:", err)
	}
	defer db.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", config.Redis.Host, config.Redis.Port),
		Password: config.Redis.Password,
		DB:       config.Redis.DB,
	})
	defer redisClient.Close()

	gateway, err := chain.NewClient(chain.Config{
		BaseURL:        config.Chain.BaseURL,
		APIKey:         config.Chain.APIKey,
		Timeout:        time.Duration(config.Chain.RequestTimeoutSec) * time.Second,
		PollInterval:   time.Duration(config.Chain.PollIntervalSec) * time.Second,
		ConfirmTimeout: time.Duration(config.Chain.ConfirmTimeoutSec) * time.Second,
	})
	if err != nil {
		log.Fatal("❌ Failed to create chain gateway:", err)
	}

	orgRepo := repository.NewPostgresOrganizationRepository(db)

	ensSrv := ens.NewService(gateway, ens.Config{
		RegistryAddress: config.Chain.RegistryAddress,
		ResolverAddress: config.Chain.ResolverAddress,
		WrapperAddress:  config.Chain.WrapperAddress,
		WalletID:        config.Chain.WalletID,
		WalletAddress:   config.Chain.WalletAddress,
	}, logger)

	orgSrv := organization.NewService(orgRepo, logger)

	claimSrv := claim.NewService(
		claim.NewRedisStore(redisClient),
		gateway,
		ensSrv,
		orgSrv,
		claim.Config{
			ControllerAddress: config.Chain.ControllerAddress,
			WrapperAddress:    config.Chain.WrapperAddress,
			WalletID:          config.Chain.WalletID,
		},
		logger,
	)

	treasurySrv := treasury.NewService(gateway, orgRepo, treasury.Config{
		WalletID:      config.Chain.WalletID,
		VaultAddress:  config.Chain.VaultAddress,
		TokenDecimals: config.Payroll.TokenDecimals,
	}, logger)

	payrollSrv := payroll.NewService(orgRepo, treasurySrv, ensSrv, payroll.Config{
		ResolveAtPayout: config.Payroll.ResolveAtPayout,
	}, logger)

	routerHandler := &RouterHandler{
		organizationHandler: organizationHandler.NewOrganizationHandler(orgSrv),
		employeeHandler:     employeeHandler.NewEmployeeHandler(orgSrv),
		identityHandler:     identityHandler.NewIdentityHandler(ensSrv),
		claimHandler:        claimHandler.NewClaimHandler(claimSrv, ensSrv),
		treasuryHandler:     treasuryHandler.NewTreasuryHandler(treasurySrv),
		payrollHandler:      payrollHandler.NewPayrollHandler(payrollSrv),
		authHandler: authHandler.NewAuthHandler(
			config.Auth.AdminUsername,
			config.Auth.AdminPassword,
			[]byte(config.Auth.JWTSecret),
			0,
		),
		jwtSecret: []byte(config.Auth.JWTSecret),
	}

	r := setupRouter(routerHandler)

	srv := &http.Server{
		Addr:    ":" + config.Server.Port,
		Handler: r,
	}

	go func() {
		log.Printf("✅ Server starting on port %s", config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ Failed to start server: %v", err)
		}
	}()

	gracefulShutdown(srv)
}

func gracefulShutdown(srv *http.Server) {
	quit := make(chan os.Signal, 1)

	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	log.Println("🔄 Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("❌ Server forced to shutdown: %v", err)
		return
	}

	select {
	case <-ctx.Done():
		log.Println("⚠️ Server shutdown timeout exceeded")
	default:
		log.Println("✅ Server gracefully stopped")
	}
}

func setupRouter(routerHandler *RouterHandler) *gin.Engine {
	r := gin.Default()
	r.SetTrustedProxies([]string{"127.0.0.1", "::1"})

	r.Use(middleware.CORSMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":    "healthy",
			"timestamp": time.Now().Unix(),
			"service":   "nominal",
		})
	})

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	publicRoutes := r.Group("/api/v1")
	{
		publicRoutes.POST("/auth/token", routerHandler.authHandler.Token)

		publicRoutes.GET("/organizations/employees", routerHandler.organizationHandler.GetEmployees)
		publicRoutes.GET("/organizations/by-owner", routerHandler.organizationHandler.GetByOwner)

		publicRoutes.POST("/claims/verify-ownership", routerHandler.claimHandler.VerifyOwnership)
		publicRoutes.GET("/claims/:label", routerHandler.claimHandler.Status)

		publicRoutes.GET("/treasury/balance", routerHandler.treasuryHandler.Balance)
	}

	privateRoutes := r.Group("/api/v1")
	privateRoutes.Use(middleware.AuthenticationMiddleware(routerHandler.jwtSecret))
	{
		privateRoutes.POST("/organizations", routerHandler.organizationHandler.CreateOrganization)
		privateRoutes.POST("/employees", routerHandler.employeeHandler.RegisterEmployee)

		privateRoutes.POST("/identity/subnames", routerHandler.identityHandler.IssueSubname)

		privateRoutes.POST("/claims", routerHandler.claimHandler.Commit)
		privateRoutes.POST("/claims/:label/register", routerHandler.claimHandler.Register)
		privateRoutes.POST("/claims/:label/wrap", routerHandler.claimHandler.Wrap)
		privateRoutes.DELETE("/claims/:label", routerHandler.claimHandler.Abandon)

		privateRoutes.POST("/treasury/fund", routerHandler.treasuryHandler.Fund)
		privateRoutes.POST("/payroll/execute", routerHandler.payrollHandler.Execute)
	}

	return r
}
