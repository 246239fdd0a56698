package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/Emlak-api/internal/application/broker"
	"github.com/jhoicas/Emlak-api/internal/application/sales"
	"github.com/jhoicas/Emlak-api/internal/domain/repository"
)

var (
	_ sales.TxRunner  = (*TxRunner)(nil)
	_ broker.TxRunner = (*TxRunner)(nil)
)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// run inicia una transacción, ejecuta fn y hace Commit o Rollback.
func (r *TxRunner) run(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return wrapErr("begin transaction", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return wrapErr("commit transaction", err)
	}
	return nil
}

// savepoint ejecuta fn en una transacción anidada (SAVEPOINT); si fn falla solo se deshace lo suyo.
func savepoint(tx pgx.Tx) func(ctx context.Context, fn func() error) error {
	return func(ctx context.Context, fn func() error) error {
		sp, err := tx.Begin(ctx)
		if err != nil {
			return wrapErr("savepoint", err)
		}
		if err := fn(); err != nil {
			if rbErr := sp.Rollback(ctx); rbErr != nil {
				return fmt.Errorf("%w (rollback savepoint: %v)", err, rbErr)
			}
			return err
		}
		if err := sp.Commit(ctx); err != nil {
			return wrapErr("release savepoint", err)
		}
		return nil
	}
}

// RunSales transacción con los repos del pipeline de ventas.
func (r *TxRunner) RunSales(ctx context.Context, fn func(repos sales.Repos) error) error {
	return r.run(ctx, func(tx pgx.Tx) error {
		return fn(sales.Repos{
			Sales:        NewSaleRepository(tx),
			Units:        NewUnitRepository(tx),
			Customers:    NewCustomerRepository(tx),
			Offers:       NewOfferRepository(tx),
			Negotiations: NewNegotiationRepository(tx),
			Deposits:     NewDepositRepository(tx),
			Contracts:    NewContractRepository(tx),
			Plans:        NewPaymentPlanRepository(tx),
			Teams:        NewTeamRepository(tx),
			Outbox:       NewOutboxRepository(tx),
			Savepoint:    savepoint(tx),
		})
	})
}

// RunBroker transacción con los repos de brokers.
func (r *TxRunner) RunBroker(ctx context.Context, fn func(repos broker.Repos) error) error {
	return r.run(ctx, func(tx pgx.Tx) error {
		return fn(broker.Repos{
			Brokers:     NewBrokerRepository(tx),
			Leads:       NewBrokerLeadRepository(tx),
			Commissions: NewCommissionRepository(tx),
			Customers:   NewCustomerRepository(tx),
		})
	})
}

// Repositories adaptadores sobre el pool, para lecturas y casos de uso sin transacción.
type Repositories struct {
	Sales     repository.SaleRepository
	Units     repository.UnitRepository
	Projects  repository.ProjectRepository
	Customers repository.CustomerRepository
	Offers    repository.OfferRepository
	Contracts repository.ContractRepository
	Plans     repository.PaymentPlanRepository
	Teams     repository.TeamRepository
	Outbox    repository.OutboxRepository
}

// NewRepositories construye los adaptadores sobre el pool.
func NewRepositories(pool *pgxpool.Pool) Repositories {
	return Repositories{
		Sales:     NewSaleRepository(pool),
		Units:     NewUnitRepository(pool),
		Projects:  NewProjectRepository(pool),
		Customers: NewCustomerRepository(pool),
		Offers:    NewOfferRepository(pool),
		Contracts: NewContractRepository(pool),
		Plans:     NewPaymentPlanRepository(pool),
		Teams:     NewTeamRepository(pool),
		Outbox:    NewOutboxRepository(pool),
	}
}
