package pipeline

import "github.com/jhoicas/Emlak-api/internal/domain/entity"

var leadStatusByStage = map[entity.SaleStatus]entity.LeadStatus{
	entity.SaleLead:           entity.LeadQualified,
	entity.SaleProspect:       entity.LeadQualified,
	entity.SaleReservation:    entity.LeadReserved,
	entity.SaleOpsiyonDeposit: entity.LeadReserved,
	entity.SaleProposal:       entity.LeadOfferSent,
	entity.SaleTeklifDeposit:  entity.LeadOfferSent,
	entity.SaleNegotiation:    entity.LeadOfferSent,
	entity.SaleSold:           entity.LeadContractSigned,
	entity.SaleCompleted:      entity.LeadContractSigned,
	entity.SaleLost:           entity.LeadRejected,
}

// LeadStatusFor traduce un estado del pipeline al vocabulario de leads.
// ok=false para estados sin equivalente (no-op en el espejo).
func LeadStatusFor(s entity.SaleStatus) (entity.LeadStatus, bool) {
	ls, ok := leadStatusByStage[s]
	return ls, ok
}
