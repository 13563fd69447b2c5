// Package store is the relational sink. It writes generated records into the
// core banking schema (cbs) of a PostgreSQL database.
package store

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"rras-datagen/internal/entities"
	"rras-datagen/internal/sink"
)

const pingTimeout = 5 * time.Second

// Config holds connection settings. ConnString wins over the discrete fields
// when set.
type Config struct {
	ConnString      string
	Host            string
	Port            int
	Name            string
	User            string
	Password        string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DSN renders the connection URL.
func (c Config) DSN() string {
	if c.ConnString != "" {
		return c.ConnString
	}
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     c.Host + ":" + strconv.Itoa(c.Port),
		Path:     "/" + c.Name,
		RawQuery: "sslmode=" + url.QueryEscape(sslMode),
	}
	return u.String()
}

// Store represents the database connection and operations.
type Store struct {
	db *sqlx.DB
}

// Connect opens the pool and verifies it with a ping.
func Connect(ctx context.Context, cfg Config) (*Store, error) {
	db, err := sqlx.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &Store{db: db}, nil
}

// NewStoreFromDB constructs a Store from an existing *sql.DB. Useful for tests.
func NewStoreFromDB(db *sql.DB) *Store {
	return &Store{db: sqlx.NewDb(db, "postgres")}
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Supports reports the kinds with a table in the cbs schema.
func (s *Store) Supports(kind entities.Kind) bool {
	switch kind {
	case entities.KindCustomer, entities.KindAccount, entities.KindLoan,
		entities.KindCapitalComponent, entities.KindLiquidityAsset:
		return true
	default:
		return false
	}
}

// Put inserts rec. Customers, accounts and loans report the database id as
// the result key.
func (s *Store) Put(ctx context.Context, rec entities.Record) sink.Result {
	kind := rec.RecordKind()
	var (
		key       string
		duplicate bool
		err       error
	)
	switch r := rec.(type) {
	case *entities.Customer:
		key, err = s.InsertCustomer(ctx, r)
	case *entities.Account:
		key, err = s.InsertAccount(ctx, r)
	case *entities.LoanRecord:
		key, err = s.InsertLoan(ctx, r)
	case *entities.CapitalComponent:
		duplicate, err = s.InsertCapitalComponent(ctx, r)
		key = sink.NaturalKey(r)
	case *entities.LiquidityAsset:
		duplicate, err = s.InsertLiquidityAsset(ctx, r)
		key = sink.NaturalKey(r)
	default:
		return sink.Unsupported(kind)
	}
	if err != nil {
		if isUniqueViolation(err) {
			return sink.Result{Kind: kind, Key: sink.NaturalKey(rec), Duplicate: true}
		}
		return sink.Failed(kind, classify(err))
	}
	return sink.Result{Kind: kind, Key: key, Duplicate: duplicate}
}

// InsertCustomer inserts c and returns the assigned customer_id. The name is
// not persisted.
func (s *Store) InsertCustomer(ctx context.Context, c *entities.Customer) (string, error) {
	query := `
		INSERT INTO cbs.customers (
			customer_type, country, country_risk_rating, internal_rating,
			external_rating, pd_value, lgd_value, is_financial_inst, is_public_sector
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING customer_id`

	var id string
	err := s.db.QueryRowxContext(ctx, query,
		c.Type, c.Country, c.CountryRiskRating, c.InternalRating,
		c.ExternalRating, c.PD, c.LGD, c.IsFinancialInst, c.IsPublicSector,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("failed to insert customer: %w", err)
	}
	return id, nil
}

// InsertAccount inserts a and returns the assigned account_id. CustomerID
// must already hold the database id of the owner.
func (s *Store) InsertAccount(ctx context.Context, a *entities.Account) (string, error) {
	query := `
		INSERT INTO cbs.accounts (
			customer_id, account_type, currency, balance, available_balance, status
		) VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING account_id`

	var id string
	err := s.db.QueryRowxContext(ctx, query,
		a.CustomerID, a.Type, a.Currency, a.Balance, a.AvailableBalance, a.Status,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("failed to insert account: %w", err)
	}
	return id, nil
}

// InsertLoan writes the loan and its performance row in one transaction and
// returns the assigned loan_id. Loans whose classification disagrees with
// their days past due are refused before touching the database.
func (s *Store) InsertLoan(ctx context.Context, rec *entities.LoanRecord) (string, error) {
	if err := rec.Loan.CheckConsistent(rec.Performance); err != nil {
		return "", err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	l := rec.Loan
	var id string
	err = tx.QueryRowxContext(ctx, `
		INSERT INTO cbs.loans (
			account_id, principal_amount, outstanding_balance, interest_rate,
			origination_date, maturity_date, collateral_value, collateral_type,
			product_type, loan_purpose, asset_class, stage,
			original_term_months, remaining_term_months
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING loan_id`,
		l.AccountID, l.PrincipalAmount, l.OutstandingBalance, l.InterestRate,
		l.OriginationDate, l.MaturityDate, l.CollateralValue, l.CollateralType,
		l.ProductType, l.LoanPurpose, l.AssetClass, l.Stage,
		l.OriginalTermMonths, l.RemainingTermMonths,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("failed to insert loan: %w", err)
	}

	p := rec.Performance
	_, err = tx.ExecContext(ctx, `
		INSERT INTO cbs.loan_performance (
			loan_id, days_past_due, last_payment_date, last_payment_amount
		) VALUES ($1, $2, $3, $4)`,
		id, p.DaysPastDue, p.LastPaymentDate, p.LastPaymentAmount,
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert loan performance: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit loan: %w", err)
	}
	return id, nil
}

// InsertCapitalComponent inserts c, reporting true when an identical row
// already existed.
func (s *Store) InsertCapitalComponent(ctx context.Context, c *entities.CapitalComponent) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO cbs.capital_components (
			as_of_date, component_type, component_name, amount, currency, regulatory_adjustment
		) VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT DO NOTHING`,
		c.AsOfDate, c.Tier, c.Name, c.Amount, c.Currency, c.RegulatoryAdjustment,
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert capital component: %w", err)
	}
	return noRows(res)
}

// InsertLiquidityAsset inserts a, reporting true when an identical row
// already existed.
func (s *Store) InsertLiquidityAsset(ctx context.Context, a *entities.LiquidityAsset) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO cbs.liquidity_assets (
			asset_type, currency, market_value, haircut_percentage,
			hqla_level, is_unencumbered, as_of_date
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT DO NOTHING`,
		a.AssetType, a.Currency, a.MarketValue, a.Haircut,
		a.HQLALevel, a.IsUnencumbered, a.AsOfDate,
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert liquidity asset: %w", err)
	}
	return noRows(res)
}

func noRows(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return n == 0, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

// classify marks connection-level failures as transient.
func classify(err error) error {
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, context.DeadlineExceeded) {
		return sink.Transient(err)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code.Class() {
		case "08", "57": // connection exception, operator intervention
			return sink.Transient(err)
		}
		if pqErr.Code == "40001" || pqErr.Code == "40P01" {
			return sink.Transient(err)
		}
	}
	return err
}
