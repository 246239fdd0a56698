package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Emlak-api/internal/application/documents"
)

// ContractHandler documentos de contratos (protegido).
type ContractHandler struct {
	pdf *documents.SchedulePDFUseCase
}

// NewContractHandler construye el handler.
func NewContractHandler(pdf *documents.SchedulePDFUseCase) *ContractHandler {
	return &ContractHandler{pdf: pdf}
}

// SchedulePDF godoc
// @Summary      Descargar cronograma de pagos del contrato en PDF
// @Tags         contracts
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  string  true  "ID del contrato"
// @Success      200  {file}  binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/contracts/{id}/schedule.pdf [get]
func (h *ContractHandler) SchedulePDF(c *fiber.Ctx) error {
	tenantID, _, ok := actor(c)
	if !ok {
		return nil
	}
	body, filename, err := h.pdf.DownloadSchedulePDF(c.UserContext(), tenantID, c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(body)
}
