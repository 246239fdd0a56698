package sales

import (
	"context"

	"github.com/jhoicas/Emlak-api/internal/domain"
)

// AssignmentUseCase reparto de ventas entre los miembros de los equipos del proyecto.
type AssignmentUseCase struct {
	*core
}

// NewAssignmentUseCase construye el caso de uso.
func NewAssignmentUseCase(d Deps) *AssignmentUseCase {
	return &AssignmentUseCase{core: newCore(d)}
}

// AutoAssignLead asigna la venta al miembro con menos ventas abiertas; empate → primero en aparecer.
func (uc *AssignmentUseCase) AutoAssignLead(ctx context.Context, tenantID, actorID, saleID string) (*Outcome, error) {
	if err := requireActor(tenantID, actorID); err != nil {
		return nil, err
	}
	o := &Outcome{}
	err := uc.exec(ctx, []string{saleKey(saleID)}, func(r Repos) error {
		s, err := uc.loadSale(ctx, r, tenantID, saleID)
		if err != nil {
			return err
		}
		if !s.HasUnit() {
			return domain.Validation("la venta no tiene unidad asignada")
		}
		u, err := r.Units.GetByID(ctx, tenantID, s.UnitID)
		if err != nil {
			return err
		}
		if u == nil {
			return domain.NotFound("unit", s.UnitID)
		}
		if u.ProjectID == "" {
			return domain.Validation("la unidad %s no pertenece a un proyecto", u.Code)
		}

		teams, err := r.Teams.ListByProject(ctx, tenantID, u.ProjectID)
		if err != nil {
			return err
		}
		if len(teams) == 0 {
			return domain.ErrNoTeamAssigned
		}
		seen := make(map[string]bool)
		var members []string
		for _, t := range teams {
			for _, m := range t.MemberIDs {
				if !seen[m] {
					seen[m] = true
					members = append(members, m)
				}
			}
		}
		if len(members) == 0 {
			return domain.ErrNoMembers
		}

		load, err := r.Sales.CountOpenByAssignees(ctx, tenantID, members)
		if err != nil {
			return err
		}
		chosen := members[0]
		for _, m := range members[1:] {
			if load[m] < load[chosen] {
				chosen = m
			}
		}

		s.AssignedTo = chosen
		s.UpdatedAt = uc.now()
		if err := r.Sales.Update(ctx, s); err != nil {
			return err
		}
		o.Sale = s
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("sale_id", saleID).Str("assigned_to", o.Sale.AssignedTo).Msg("venta asignada")
	return o, nil
}
