// Package pipeline reglas puras del estado de una venta: transiciones, retención de unidades
// y traducción al vocabulario de leads de brokers.
package pipeline

import (
	"github.com/jhoicas/Emlak-api/internal/domain/entity"
)

// rank orden de avance en el embudo; los estados "KaporaBekleniyor" comparten etapa con su par.
var rank = map[entity.SaleStatus]int{
	entity.SaleLead:           0,
	entity.SaleProspect:       1,
	entity.SaleReservation:    2,
	entity.SaleOpsiyonDeposit: 2,
	entity.SaleProposal:       3,
	entity.SaleTeklifDeposit:  3,
	entity.SaleNegotiation:    4,
	entity.SaleSold:           5,
	entity.SaleContract:       5,
	entity.SaleCompleted:      6,
	entity.SaleLost:           7,
}

// Statuses todos los estados conocidos, en orden de avance.
func Statuses() []entity.SaleStatus {
	return []entity.SaleStatus{
		entity.SaleLead, entity.SaleProspect, entity.SaleReservation, entity.SaleOpsiyonDeposit,
		entity.SaleProposal, entity.SaleTeklifDeposit, entity.SaleNegotiation,
		entity.SaleSold, entity.SaleContract, entity.SaleCompleted, entity.SaleLost,
	}
}

// Parse valida un estado recibido del exterior.
func Parse(s string) (entity.SaleStatus, bool) {
	st := entity.SaleStatus(s)
	_, ok := rank[st]
	return st, ok
}

// IsTerminal Sold, Completed, Contract y Lost no admiten updateSaleStatus libre.
func IsTerminal(s entity.SaleStatus) bool {
	switch s {
	case entity.SaleSold, entity.SaleCompleted, entity.SaleContract, entity.SaleLost:
		return true
	}
	return false
}

// IsOpen cuenta para la carga de trabajo de un vendedor.
func IsOpen(s entity.SaleStatus) bool {
	return !IsTerminal(s)
}

// HoldsUnit estados en los que la venta retiene la unidad (Reserved o Sold).
func HoldsUnit(s entity.SaleStatus) bool {
	switch s {
	case entity.SaleReservation, entity.SaleOpsiyonDeposit,
		entity.SaleProposal, entity.SaleTeklifDeposit, entity.SaleNegotiation,
		entity.SaleSold, entity.SaleCompleted, entity.SaleContract:
		return true
	}
	return false
}

// SellsUnit estados que marcan la unidad como vendida.
func SellsUnit(s entity.SaleStatus) bool {
	return s == entity.SaleSold || s == entity.SaleCompleted || s == entity.SaleContract
}

// RequiresUnit estados que no tienen sentido sin unidad.
func RequiresUnit(s entity.SaleStatus) bool {
	return HoldsUnit(s)
}

// IsReservation Reservation u Opsiyon.
func IsReservation(s entity.SaleStatus) bool {
	return s == entity.SaleReservation || s == entity.SaleOpsiyonDeposit
}

// CanTransition desde un estado abierto se puede ir a cualquier otro estado abierto, a Sold,
// Completed o Lost. Sold (y Contract) solo avanzan a Completed; Completed y Lost son finales.
func CanTransition(from, to entity.SaleStatus) bool {
	if _, ok := rank[to]; !ok {
		return false
	}
	switch from {
	case entity.SaleSold, entity.SaleContract:
		return to == entity.SaleCompleted
	case entity.SaleCompleted, entity.SaleLost:
		return false
	}
	return to != entity.SaleContract
}

// IsBackward true si el destino está en una etapa anterior o es Lost.
func IsBackward(from, to entity.SaleStatus) bool {
	if to == entity.SaleLost {
		return true
	}
	return rank[to] < rank[from]
}
