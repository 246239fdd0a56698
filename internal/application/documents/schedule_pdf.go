package documents

import (
	"context"
	"fmt"

	"github.com/jhoicas/Emlak-api/internal/domain"
	"github.com/jhoicas/Emlak-api/internal/domain/entity"
	"github.com/jhoicas/Emlak-api/internal/domain/repository"
)

// ScheduleDocument datos completos para renderizar el cronograma de un contrato.
type ScheduleDocument struct {
	Contract *entity.Contract
	Plan     *entity.PaymentPlan
	Customer *entity.Customer
	Unit     *entity.Unit
}

// ScheduleGenerator renderiza el cronograma de pagos como PDF.
type ScheduleGenerator interface {
	GenerateSchedulePDF(ctx context.Context, doc ScheduleDocument) ([]byte, error)
}

// SchedulePDFUseCase genera el PDF del cronograma vinculado a un contrato.
type SchedulePDFUseCase struct {
	contracts repository.ContractRepository
	plans     repository.PaymentPlanRepository
	customers repository.CustomerRepository
	units     repository.UnitRepository
	generator ScheduleGenerator
}

// NewSchedulePDFUseCase construye el caso de uso inyectando todas sus dependencias.
func NewSchedulePDFUseCase(
	contracts repository.ContractRepository,
	plans repository.PaymentPlanRepository,
	customers repository.CustomerRepository,
	units repository.UnitRepository,
	generator ScheduleGenerator,
) *SchedulePDFUseCase {
	return &SchedulePDFUseCase{
		contracts: contracts,
		plans:     plans,
		customers: customers,
		units:     units,
		generator: generator,
	}
}

// DownloadSchedulePDF devuelve los bytes del PDF y el nombre de archivo.
//
// Retorna:
//   - domain.ErrNotFound    si el contrato no existe en el tenant.
//   - domain.ErrValidation  si el contrato no tiene plan de pagos.
func (uc *SchedulePDFUseCase) DownloadSchedulePDF(ctx context.Context, tenantID, contractID string) (pdfBytes []byte, filename string, err error) {
	// ── 1. Contrato y plan ────────────────────────────────────────────────────
	c, err := uc.contracts.GetByID(ctx, tenantID, contractID)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: obtener contrato: %w", err)
	}
	if c == nil {
		return nil, "", domain.NotFound("contract", contractID)
	}
	plan, err := uc.plans.GetByContract(ctx, tenantID, c.ID)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: obtener plan: %w", err)
	}
	if plan == nil {
		return nil, "", domain.Validation("el contrato %s no tiene plan de pagos", c.ContractNumber)
	}

	// ── 2. Cliente y unidad (opcionales para el render) ───────────────────────
	customer, err := uc.customers.GetByID(ctx, tenantID, c.CustomerID)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: obtener cliente: %w", err)
	}
	unit, err := uc.units.GetByID(ctx, tenantID, c.UnitID)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: obtener unidad: %w", err)
	}

	// ── 3. Generar PDF ────────────────────────────────────────────────────────
	pdfBytes, err = uc.generator.GenerateSchedulePDF(ctx, ScheduleDocument{
		Contract: c,
		Plan:     plan,
		Customer: customer,
		Unit:     unit,
	})
	if err != nil {
		return nil, "", fmt.Errorf("pdf: generación fallida: %w", err)
	}
	return pdfBytes, fmt.Sprintf("cronograma_%s.pdf", c.ContractNumber), nil
}
