// Package memory implementa los repositorios en memoria con transacciones por instantánea.
// Respalda STORE_DRIVER=memory y los tests de casos de uso.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/jhoicas/Emlak-api/internal/application/broker"
	"github.com/jhoicas/Emlak-api/internal/application/sales"
	"github.com/jhoicas/Emlak-api/internal/domain"
	"github.com/jhoicas/Emlak-api/internal/domain/entity"
	"github.com/jhoicas/Emlak-api/internal/domain/event"
	"github.com/jhoicas/Emlak-api/internal/domain/repository"
)

var (
	_ sales.TxRunner  = (*Store)(nil)
	_ broker.TxRunner = (*Store)(nil)
)

// Store guarda todo bajo un único mutex. Una transacción lo retiene de principio a fin,
// así que las lecturas "for update" equivalen a lecturas normales.
// Los valores guardados nunca se modifican en sitio: Update reemplaza la copia,
// por eso una instantánea es una copia de los mapas.
type Store struct {
	mu     sync.Mutex
	data   *state
	faults map[string]error
}

type outboxRow struct {
	evt          event.Event
	dispatchedAt *time.Time
}

type state struct {
	seq          int64
	order        map[string]int64
	sales        map[string]*entity.Sale
	units        map[string]*entity.Unit
	projects     map[string]*entity.Project
	customers    map[string]*entity.Customer
	offers       map[string]*entity.Offer
	negotiations map[string]*entity.Negotiation
	deposits     map[string]*entity.Deposit
	contracts    map[string]*entity.Contract
	plans        map[string]*entity.PaymentPlan
	teams        map[string]*entity.Team
	outbox       map[string]outboxRow
	brokers      map[string]*entity.Broker
	leads        map[string]*entity.BrokerLead
	history      map[string][]*entity.LeadHistory
	commissions  map[string]*entity.Commission
}

// NewStore crea un store vacío.
func NewStore() *Store {
	return &Store{data: newState(), faults: make(map[string]error)}
}

func newState() *state {
	return &state{
		order:        make(map[string]int64),
		sales:        make(map[string]*entity.Sale),
		units:        make(map[string]*entity.Unit),
		projects:     make(map[string]*entity.Project),
		customers:    make(map[string]*entity.Customer),
		offers:       make(map[string]*entity.Offer),
		negotiations: make(map[string]*entity.Negotiation),
		deposits:     make(map[string]*entity.Deposit),
		contracts:    make(map[string]*entity.Contract),
		plans:        make(map[string]*entity.PaymentPlan),
		teams:        make(map[string]*entity.Team),
		outbox:       make(map[string]outboxRow),
		brokers:      make(map[string]*entity.Broker),
		leads:        make(map[string]*entity.BrokerLead),
		history:      make(map[string][]*entity.LeadHistory),
		commissions:  make(map[string]*entity.Commission),
	}
}

func (d *state) clone() *state {
	c := &state{
		seq:          d.seq,
		order:        copyMap(d.order),
		sales:        copyMap(d.sales),
		units:        copyMap(d.units),
		projects:     copyMap(d.projects),
		customers:    copyMap(d.customers),
		offers:       copyMap(d.offers),
		negotiations: copyMap(d.negotiations),
		deposits:     copyMap(d.deposits),
		contracts:    copyMap(d.contracts),
		plans:        copyMap(d.plans),
		teams:        copyMap(d.teams),
		outbox:       copyMap(d.outbox),
		brokers:      copyMap(d.brokers),
		leads:        copyMap(d.leads),
		history:      make(map[string][]*entity.LeadHistory, len(d.history)),
		commissions:  copyMap(d.commissions),
	}
	for k, v := range d.history {
		c.history[k] = append([]*entity.LeadHistory(nil), v...)
	}
	return c
}

func copyMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// touch registra el orden de alta de id.
func (d *state) touch(id string) {
	if _, ok := d.order[id]; ok {
		return
	}
	d.seq++
	d.order[id] = d.seq
}

// sortByOrder ordena por orden de alta.
func sortByOrder[T any](d *state, list []T, id func(T) string) {
	sort.SliceStable(list, func(i, j int) bool { return d.order[id(list[i])] < d.order[id(list[j])] })
}

// InjectFault hace fallar la operación op ("offers.create", "units.update", ...) hasta ClearFaults.
func (s *Store) InjectFault(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults[op] = err
}

// ClearFaults elimina los fallos inyectados.
func (s *Store) ClearFaults() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults = make(map[string]error)
}

// fault se consulta con el mutex tomado.
func (s *Store) fault(op string) error {
	if err, ok := s.faults[op]; ok {
		return domain.Store(op, err)
	}
	return nil
}

// with ejecuta fn sobre el estado actual; fuera de transacción toma el mutex por llamada.
func (s *Store) with(inTx bool, fn func(d *state) error) error {
	if !inTx {
		s.mu.Lock()
		defer s.mu.Unlock()
	}
	return fn(s.data)
}

// begin toma el mutex y guarda la instantánea para el rollback.
func (s *Store) begin(ctx context.Context) (*state, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	s.mu.Lock()
	return s.data.clone(), nil
}

func (s *Store) finish(snap *state, err error) error {
	if err != nil {
		s.data = snap
	}
	s.mu.Unlock()
	return err
}

func (s *Store) savepoint(_ context.Context, fn func() error) error {
	snap := s.data.clone()
	if err := fn(); err != nil {
		s.data = snap
		return err
	}
	return nil
}

// RunSales implementa sales.TxRunner.
func (s *Store) RunSales(ctx context.Context, fn func(r sales.Repos) error) (err error) {
	snap, err := s.begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if p := recover(); p != nil {
			s.data = snap
			s.mu.Unlock()
			panic(p)
		}
	}()
	return s.finish(snap, fn(s.salesRepos(true)))
}

// RunBroker implementa broker.TxRunner.
func (s *Store) RunBroker(ctx context.Context, fn func(r broker.Repos) error) (err error) {
	snap, err := s.begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if p := recover(); p != nil {
			s.data = snap
			s.mu.Unlock()
			panic(p)
		}
	}()
	return s.finish(snap, fn(s.brokerRepos(true)))
}

func (s *Store) salesRepos(inTx bool) sales.Repos {
	return sales.Repos{
		Sales:        &saleRepo{s: s, tx: inTx},
		Units:        &unitRepo{s: s, tx: inTx},
		Customers:    &customerRepo{s: s, tx: inTx},
		Offers:       &offerRepo{s: s, tx: inTx},
		Negotiations: &negotiationRepo{s: s, tx: inTx},
		Deposits:     &depositRepo{s: s, tx: inTx},
		Contracts:    &contractRepo{s: s, tx: inTx},
		Plans:        &planRepo{s: s, tx: inTx},
		Teams:        &teamRepo{s: s, tx: inTx},
		Outbox:       &outboxRepo{s: s, tx: inTx},
		Savepoint:    s.savepoint,
	}
}

func (s *Store) brokerRepos(inTx bool) broker.Repos {
	return broker.Repos{
		Brokers:     &brokerRepo{s: s, tx: inTx},
		Leads:       &leadRepo{s: s, tx: inTx},
		Commissions: &commissionRepo{s: s, tx: inTx},
		Customers:   &customerRepo{s: s, tx: inTx},
	}
}

// Repositorios fuera de transacción: cada llamada toma el mutex.

func (s *Store) Sales() repository.SaleRepository { return &saleRepo{s: s} }

func (s *Store) Units() repository.UnitRepository { return &unitRepo{s: s} }

func (s *Store) Projects() repository.ProjectRepository { return &projectRepo{s: s} }

func (s *Store) Customers() repository.CustomerRepository { return &customerRepo{s: s} }

func (s *Store) Offers() repository.OfferRepository { return &offerRepo{s: s} }

func (s *Store) Negotiations() repository.NegotiationRepository { return &negotiationRepo{s: s} }

func (s *Store) Deposits() repository.DepositRepository { return &depositRepo{s: s} }

func (s *Store) Contracts() repository.ContractRepository { return &contractRepo{s: s} }

func (s *Store) Plans() repository.PaymentPlanRepository { return &planRepo{s: s} }

func (s *Store) Teams() repository.TeamRepository { return &teamRepo{s: s} }

func (s *Store) Outbox() repository.OutboxRepository { return &outboxRepo{s: s} }

func (s *Store) Brokers() repository.BrokerRepository { return &brokerRepo{s: s} }

func (s *Store) Leads() repository.BrokerLeadRepository { return &leadRepo{s: s} }

func (s *Store) Commissions() repository.CommissionRepository { return &commissionRepo{s: s} }
