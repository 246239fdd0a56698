package broker

import (
	"context"

	"github.com/jhoicas/Emlak-api/internal/domain/repository"
)

// Repos repositorios del espejo de brokers atados a una misma transacción.
type Repos struct {
	Brokers     repository.BrokerRepository
	Leads       repository.BrokerLeadRepository
	Commissions repository.CommissionRepository
	Customers   repository.CustomerRepository
}

// TxRunner ejecuta fn dentro de una transacción; Commit si fn no falla, Rollback si falla.
type TxRunner interface {
	RunBroker(ctx context.Context, fn func(r Repos) error) error
}

// Locker serializa el alta de leads sobre el mismo teléfono.
type Locker interface {
	Lock(ctx context.Context, keys ...string) (unlock func(), err error)
}

// Metrics contadores del espejo.
type Metrics interface {
	MirrorSync(result string)
	CommissionCreated(brokerID string)
}

// Resultados de sincronización reportados a Metrics.
const (
	SyncApplied = "applied"
	SyncNoop    = "noop"
	SyncFailed  = "failed"
)

type nopMetrics struct{}

func (nopMetrics) MirrorSync(string)        {}
func (nopMetrics) CommissionCreated(string) {}

type nopLocker struct{}

func (nopLocker) Lock(context.Context, ...string) (func(), error) { return func() {}, nil }
