// Package dependency provides dependency injection for the application.
package dependency

import (
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/finance-tracker/eventcore/config"
	"github.com/finance-tracker/eventcore/internal/application/adapter"
	"github.com/finance-tracker/eventcore/internal/application/projector"
	"github.com/finance-tracker/eventcore/internal/application/saga"
	"github.com/finance-tracker/eventcore/internal/application/usecase/advisor"
	"github.com/finance-tracker/eventcore/internal/application/usecase/dashboard"
	"github.com/finance-tracker/eventcore/internal/application/usecase/expense"
	"github.com/finance-tracker/eventcore/internal/application/usecase/income"
	"github.com/finance-tracker/eventcore/internal/infra/outbox"
	"github.com/finance-tracker/eventcore/internal/infra/server/router"
	"github.com/finance-tracker/eventcore/internal/integration/adapters"
	"github.com/finance-tracker/eventcore/internal/integration/entrypoint/controller"
	"github.com/finance-tracker/eventcore/internal/integration/entrypoint/middleware"
	"github.com/finance-tracker/eventcore/internal/integration/idempotency"
	"github.com/finance-tracker/eventcore/internal/integration/persistence"
)

// Injector holds all application dependencies.
type Injector struct {
	Config *config.Config
	DB     *gorm.DB
	Router *router.Router

	Relay              *outbox.Relay
	Coordinator        *saga.Coordinator
	AggregateProjector *projector.AggregateProjector
	DashboardProjector *projector.DashboardProjector
}

// NewInjector creates a new dependency injector with all dependencies wired.
// The broker publisher is passed in so tests can substitute a fake bus.
func NewInjector(
	cfg *config.Config,
	db *gorm.DB,
	redisClient *redis.Client,
	publisher adapter.EventPublisher,
	dbHealthChecker func() bool,
	redisHealthChecker func() bool,
) *Injector {
	// Repositories
	expenseRepo := persistence.NewExpenseRepository(db)
	incomeRepo := persistence.NewIncomeRepository(db)
	aggregateRepo := persistence.NewAggregateRepository(db)
	dashboardRepo := persistence.NewDashboardRepository(db)
	tokenLedgerRepo := persistence.NewTokenLedgerRepository(db, cfg.Tokens.DefaultPlan, cfg.PlanAllotments())
	sagaRepo := persistence.NewSagaRepository(db)
	outboxRepo := persistence.NewOutboxRepository(db)
	adviceLogRepo := persistence.NewAdviceLogRepository(db)

	// Adapters/services
	idempotencyLedger := idempotency.NewRedisLedger(redisClient, cfg.Idempotency.TTL)
	tokenVerifier := adapters.NewJWTVerifier(cfg.JWT.Secret)
	advisorService := adapters.NewGeminiAdvisor(cfg.AI.GeminiAPIKey)

	// Use cases
	createExpenseUseCase := expense.NewCreateExpenseUseCase(expenseRepo, idempotencyLedger)
	deleteExpensesUseCase := expense.NewDeleteExpensesUseCase(expenseRepo)
	createIncomeUseCase := income.NewCreateIncomeUseCase(incomeRepo, idempotencyLedger)
	deleteIncomesUseCase := income.NewDeleteIncomesUseCase(incomeRepo)
	getDashboardUseCase := dashboard.NewGetDashboardUseCase(dashboardRepo)
	getAggregatesUseCase := dashboard.NewGetAggregatesUseCase(aggregateRepo)
	getAdviceUseCase := advisor.NewGetAdviceUseCase(
		tokenLedgerRepo,
		aggregateRepo,
		adviceLogRepo,
		advisorService,
		cfg.Tokens.MinAdviceBalance,
	)

	// Event consumers
	aggregateProjector := projector.NewAggregateProjector(aggregateRepo, publisher, projector.Config{
		ConsumerGroup: cfg.Broker.FinancialDataGroup,
		MaxAttempts:   cfg.Broker.MaxDeliveries,
		BaseDelay:     cfg.Broker.RetryDelay,
	})
	dashboardProjector := projector.NewDashboardProjector(dashboardRepo, publisher, cfg.Dashboard.RecentItemsCapacity, projector.Config{
		ConsumerGroup: cfg.Broker.DashboardGroup,
		MaxAttempts:   cfg.Broker.MaxDeliveries,
		BaseDelay:     cfg.Broker.RetryDelay,
	})
	coordinator := saga.NewCoordinator(sagaRepo, expenseRepo, incomeRepo, tokenLedgerRepo, saga.CoordinatorConfig{
		GraceWindow:   cfg.Broker.RetryDelay * 4,
		SweepInterval: cfg.Outbox.PollInterval * 5,
		SweepBatch:    cfg.Outbox.BatchSize,
	})

	relay := outbox.NewRelay(outboxRepo, sagaRepo, publisher, outbox.RelayConfig{
		PollInterval: cfg.Outbox.PollInterval,
		BatchSize:    cfg.Outbox.BatchSize,
		MaxAttempts:  cfg.Outbox.MaxAttempts,
	})

	// Controllers
	healthController := controller.NewHealthController(dbHealthChecker, redisHealthChecker)
	expenseController := controller.NewExpenseController(createExpenseUseCase, deleteExpensesUseCase)
	incomeController := controller.NewIncomeController(createIncomeUseCase, deleteIncomesUseCase)
	dashboardController := controller.NewDashboardController(getDashboardUseCase, getAggregatesUseCase)
	adviceController := controller.NewAdviceController(getAdviceUseCase)

	authMiddleware := middleware.NewAuthMiddleware(tokenVerifier)
	adviceRateLimiter := middleware.NewRateLimiter()

	appRouter := router.NewRouter(
		healthController,
		expenseController,
		incomeController,
		dashboardController,
		adviceController,
		authMiddleware,
		adviceRateLimiter,
	)

	return &Injector{
		Config:             cfg,
		DB:                 db,
		Router:             appRouter,
		Relay:              relay,
		Coordinator:        coordinator,
		AggregateProjector: aggregateProjector,
		DashboardProjector: dashboardProjector,
	}
}
