package pipeline_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/Emlak-api/internal/domain/entity"
	"github.com/jhoicas/Emlak-api/internal/domain/pipeline"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to entity.SaleStatus
		want     bool
	}{
		{entity.SaleLead, entity.SaleProspect, true},
		{entity.SaleProspect, entity.SaleReservation, true},
		{entity.SaleReservation, entity.SaleProposal, true},
		{entity.SaleProposal, entity.SaleNegotiation, true},
		{entity.SaleNegotiation, entity.SaleSold, true},
		{entity.SaleProposal, entity.SaleProspect, true},
		{entity.SaleLead, entity.SaleLost, true},
		{entity.SaleNegotiation, entity.SaleLost, true},
		{entity.SaleSold, entity.SaleCompleted, true},
		{entity.SaleSold, entity.SaleLost, false},
		{entity.SaleSold, entity.SaleProposal, false},
		{entity.SaleLost, entity.SaleLead, false},
		{entity.SaleLost, entity.SaleProspect, false},
		{entity.SaleCompleted, entity.SaleLost, false},
		{entity.SaleLead, entity.SaleContract, false},
		{entity.SaleLead, "Desconocido", false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, pipeline.CanTransition(tc.from, tc.to), "%s → %s", tc.from, tc.to)
	}
}

func TestHoldsUnit(t *testing.T) {
	assert.False(t, pipeline.HoldsUnit(entity.SaleLead))
	assert.False(t, pipeline.HoldsUnit(entity.SaleProspect))
	assert.False(t, pipeline.HoldsUnit(entity.SaleLost))
	assert.True(t, pipeline.HoldsUnit(entity.SaleReservation))
	assert.True(t, pipeline.HoldsUnit(entity.SaleOpsiyonDeposit))
	assert.True(t, pipeline.HoldsUnit(entity.SaleTeklifDeposit))
	assert.True(t, pipeline.HoldsUnit(entity.SaleSold))
}

func TestIsBackward(t *testing.T) {
	assert.True(t, pipeline.IsBackward(entity.SaleProposal, entity.SaleReservation))
	assert.True(t, pipeline.IsBackward(entity.SaleProposal, entity.SaleLost))
	assert.False(t, pipeline.IsBackward(entity.SaleProposal, entity.SaleTeklifDeposit))
	assert.False(t, pipeline.IsBackward(entity.SaleProposal, entity.SaleNegotiation))
}

func TestLeadStatusFor_TablaFija(t *testing.T) {
	cases := map[entity.SaleStatus]entity.LeadStatus{
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
	for in, want := range cases {
		got, ok := pipeline.LeadStatusFor(in)
		assert.True(t, ok, "%s", in)
		assert.Equal(t, want, got, "%s", in)
	}

	_, ok := pipeline.LeadStatusFor(entity.SaleContract)
	assert.False(t, ok, "Contract no tiene equivalente")
}
