package sales

import (
	"context"
	"time"

	"github.com/jhoicas/Emlak-api/internal/domain/entity"
	"github.com/jhoicas/Emlak-api/internal/domain/repository"
)

// Repos repositorios atados a una misma transacción.
type Repos struct {
	Sales        repository.SaleRepository
	Units        repository.UnitRepository
	Customers    repository.CustomerRepository
	Offers       repository.OfferRepository
	Negotiations repository.NegotiationRepository
	Deposits     repository.DepositRepository
	Contracts    repository.ContractRepository
	Plans        repository.PaymentPlanRepository
	Teams        repository.TeamRepository
	Outbox       repository.OutboxRepository
	// Savepoint ejecuta fn dentro de un savepoint: si fn falla solo se deshace lo hecho en fn.
	Savepoint func(ctx context.Context, fn func() error) error
}

// TxRunner ejecuta fn dentro de una transacción; Commit si fn no falla, Rollback si falla.
type TxRunner interface {
	RunSales(ctx context.Context, fn func(r Repos) error) error
}

// Locker serializa comandos sobre las mismas claves (sale:<id>, unit:<id>).
type Locker interface {
	Lock(ctx context.Context, keys ...string) (unlock func(), err error)
}

// Notifier se invoca tras cada commit para publicar el outbox.
type Notifier interface {
	Notify(ctx context.Context)
}

// Metrics contadores del pipeline.
type Metrics interface {
	Transition(from, to entity.SaleStatus)
	FailedStep(step string)
}

// SideEffectPolicy qué hacer cuando falla un paso secundario.
type SideEffectPolicy string

const (
	BestEffort SideEffectPolicy = "best_effort" // se registra en Outcome.Failed y el comando sigue
	Strict     SideEffectPolicy = "strict"      // el comando falla y se hace rollback
)

// Policy parámetros de negocio del pipeline.
type Policy struct {
	SideEffects     SideEffectPolicy
	DefaultCurrency string
	OfferValidity   time.Duration
}

type nopNotifier struct{}

func (nopNotifier) Notify(context.Context) {}

type nopMetrics struct{}

func (nopMetrics) Transition(entity.SaleStatus, entity.SaleStatus) {}
func (nopMetrics) FailedStep(string)                               {}

type nopLocker struct{}

func (nopLocker) Lock(context.Context, ...string) (func(), error) { return func() {}, nil }
