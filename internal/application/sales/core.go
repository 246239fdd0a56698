package sales

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"

	"github.com/jhoicas/Emlak-api/internal/domain"
	"github.com/jhoicas/Emlak-api/internal/domain/entity"
	"github.com/jhoicas/Emlak-api/internal/domain/event"
	"github.com/jhoicas/Emlak-api/pkg/logger"
)

// Deps dependencias comunes de los casos de uso de ventas.
type Deps struct {
	Tx       TxRunner
	Locker   Locker
	Notifier Notifier
	Metrics  Metrics
	Log      *logger.Logger
	Policy   Policy
	Now      func() time.Time
}

// core infraestructura compartida: lock → transacción → outbox → notificación.
type core struct {
	tx       TxRunner
	locker   Locker
	notifier Notifier
	metrics  Metrics
	log      *logger.Logger
	policy   Policy
	now      func() time.Time
}

func newCore(d Deps) *core {
	c := &core{
		tx:       d.Tx,
		locker:   d.Locker,
		notifier: d.Notifier,
		metrics:  d.Metrics,
		log:      d.Log,
		policy:   d.Policy,
		now:      d.Now,
	}
	if c.locker == nil {
		c.locker = nopLocker{}
	}
	if c.notifier == nil {
		c.notifier = nopNotifier{}
	}
	if c.metrics == nil {
		c.metrics = nopMetrics{}
	}
	if c.log == nil {
		c.log = logger.Nop()
	}
	if c.now == nil {
		c.now = time.Now
	}
	if c.policy.SideEffects == "" {
		c.policy.SideEffects = BestEffort
	}
	if c.policy.DefaultCurrency == "" {
		c.policy.DefaultCurrency = "TRY"
	}
	if c.policy.OfferValidity <= 0 {
		c.policy.OfferValidity = 30 * 24 * time.Hour
	}
	return c
}

// exec bloquea las claves, ejecuta fn en una transacción y, tras el commit, publica el outbox.
func (c *core) exec(ctx context.Context, keys []string, fn func(r Repos) error) error {
	if err := c.locked(ctx, keys, func() error { return c.tx.RunSales(ctx, fn) }); err != nil {
		return err
	}
	c.notifier.Notify(ctx)
	return nil
}

func (c *core) locked(ctx context.Context, keys []string, fn func() error) error {
	unlock, err := c.locker.Lock(ctx, keys...)
	if err != nil {
		return fmt.Errorf("lock %s: %w", strings.Join(keys, ","), err)
	}
	defer unlock()
	return fn()
}

// bestEffort ejecuta un paso secundario en un savepoint según la política configurada.
func (c *core) bestEffort(ctx context.Context, r Repos, o *Outcome, step string, fn func() error) error {
	err := r.Savepoint(ctx, fn)
	if err == nil {
		return nil
	}
	if c.policy.SideEffects == Strict {
		return fmt.Errorf("%s: %w", step, err)
	}
	c.log.Warn().Err(err).Str("step", step).Msg("paso secundario fallido")
	c.metrics.FailedStep(step)
	o.Failed = append(o.Failed, FailedStep{Step: step, Err: err})
	return nil
}

// emit agrega el evento al outbox dentro de la transacción del comando.
func (c *core) emit(ctx context.Context, r Repos, typ event.Type, tenantID, actorID string, s *entity.Sale, notes, depositID string) error {
	price, err := c.salePrice(ctx, r, s)
	if err != nil {
		return err
	}
	evt := event.Event{
		ID:       ulid.Make().String(),
		Type:     typ,
		TenantID: tenantID,
		ActorID:  actorID,
		Payload: event.SaleStatus{
			SaleID:     s.ID,
			CustomerID: s.CustomerID,
			Status:     string(s.Status),
			FinalPrice: price,
			Currency:   s.Currency,
			DepositID:  depositID,
			Notes:      notes,
		},
		OccurredAt: c.now(),
	}
	if err := r.Outbox.Append(ctx, evt); err != nil {
		return err
	}
	return nil
}

// salePrice final_price o, si no hay, el precio de la unidad.
func (c *core) salePrice(ctx context.Context, r Repos, s *entity.Sale) (decimal.Decimal, error) {
	if s.FinalPrice.Valid {
		return s.FinalPrice.Decimal, nil
	}
	if !s.HasUnit() {
		return decimal.Zero, nil
	}
	u, err := r.Units.GetByID(ctx, s.TenantID, s.UnitID)
	if err != nil {
		return decimal.Zero, err
	}
	if u == nil {
		return decimal.Zero, nil
	}
	return u.Price, nil
}

// normalizeCurrency valida un código ISO 4217; vacío → fallback.
func normalizeCurrency(code, fallback string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		code = fallback
	}
	unit, err := currency.ParseISO(code)
	if err != nil {
		return "", domain.Validation("moneda inválida %q", code)
	}
	return unit.String(), nil
}

func newID() string {
	return uuid.New().String()
}

func saleKey(id string) string { return "sale:" + id }

func unitKey(id string) string { return "unit:" + id }

func offerKey(id string) string { return "offer:" + id }

func depositKey(id string) string { return "deposit:" + id }
