package accounting

import (
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/razalrahmanp/palaka-sub014/internal/accounting/accounts"
	"github.com/razalrahmanp/palaka-sub014/internal/accounting/aging"
	"github.com/razalrahmanp/palaka-sub014/internal/accounting/balances"
	"github.com/razalrahmanp/palaka-sub014/internal/accounting/journals"
	"github.com/razalrahmanp/palaka-sub014/internal/accounting/periods"
	"github.com/razalrahmanp/palaka-sub014/internal/accounting/reports"
	"github.com/razalrahmanp/palaka-sub014/internal/platform/cache"
	"github.com/razalrahmanp/palaka-sub014/internal/shared"
)

// Deps carries the infrastructure the ledger runs on. Redis is optional; without
// it reports are rebuilt on every request and recalculation runs unlocked.
type Deps struct {
	Pool             *pgxpool.Pool
	Redis            *redis.Client
	Logger           *slog.Logger
	FiscalStartMonth int
	ReportCacheTTL   time.Duration
	RecalcLockTTL    time.Duration
	Observer         journals.Observer
}

// Module bundles the ledger services sharing one calendar and report cache.
type Module struct {
	Calendar periods.Calendar
	Cache    *cache.Versioned
	Accounts *accounts.Service
	Journals *journals.Service
	Balances *balances.Service
	Reports  *reports.Service
	Aging    *aging.Service

	idempotency *shared.IdempotencyStore
	logger      *slog.Logger
}

// NewModule builds every ledger service against the shared pool.
func NewModule(deps Deps) *Module {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	calendar := periods.NewCalendar(deps.FiscalStartMonth)
	versioned := cache.NewVersioned(deps.Redis, deps.ReportCacheTTL)

	journalSvc := journals.NewService(
		journals.NewRepository(deps.Pool),
		calendar,
		shared.NewAuditLogger(deps.Pool, logger),
		logger.With(slog.String("component", "journals")),
	)
	journalSvc.SetInvalidator(versioned)
	if deps.Observer != nil {
		journalSvc.SetObserver(deps.Observer)
	}

	balanceSvc := balances.NewService(balances.NewRepository(deps.Pool), logger.With(slog.String("component", "balances")))
	balanceSvc.SetLocker(cache.NewLocker(deps.Redis), deps.RecalcLockTTL)
	balanceSvc.SetInvalidator(versioned)

	return &Module{
		Calendar:    calendar,
		Cache:       versioned,
		Accounts:    accounts.NewService(accounts.NewRepository(deps.Pool)),
		Journals:    journalSvc,
		Balances:    balanceSvc,
		Reports:     reports.NewService(reports.NewRepository(deps.Pool), versioned, calendar),
		Aging:       aging.NewService(aging.NewRepository(deps.Pool), versioned),
		idempotency: shared.NewIdempotencyStore(deps.Pool),
		logger:      logger,
	}
}

// Handler exposes the module over HTTP.
func (m *Module) Handler() *Handler {
	return NewHandler(
		accounts.NewHandler(m.logger, m.Accounts),
		journals.NewHandler(m.logger, m.Journals, m.idempotency),
		balances.NewHandler(m.logger, m.Balances),
		reports.NewHandler(m.logger, m.Reports),
		aging.NewHandler(m.logger, m.Aging),
	)
}
