package handler

import (
	"strconv"

	"erp/internal/apperr"
	"erp/internal/domain/model"
	repo "erp/internal/repository"
	"erp/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type ProductionHandler struct {
	productions *usecase.ProductionUsecase
	jobs        *usecase.JobUsecase
}

// DIコンストラクタ
func NewProductionHandler(productions *usecase.ProductionUsecase, jobs *usecase.JobUsecase) *ProductionHandler {
	return &ProductionHandler{productions: productions, jobs: jobs}
}

// POST /boms
func (h *ProductionHandler) CreateBom(c echo.Context) error {
	var req usecase.BomInput
	if err := c.Bind(&req); err != nil {
		return respondError(c, apperr.Validation("invalid request body"))
	}

	id, err := h.productions.CreateBom(c.Request().Context(), req)
	if err != nil {
		return respondError(c, err)
	}
	return respondCreated(c, map[string]any{"bom_id": id})
}

// GET /boms
func (h *ProductionHandler) ListBoms(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	boms, total, err := h.productions.ListBoms(c.Request().Context(), page, limit)
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, paged{List: boms, Total: total, Page: page, Limit: limit})
}

// POST /manufacture-orders
func (h *ProductionHandler) CreateMo(c echo.Context) error {
	var req usecase.CreateMoInput
	if err := c.Bind(&req); err != nil {
		return respondError(c, apperr.Validation("invalid request body"))
	}
	req.Operator = operatorOf(c)

	moNo, err := h.productions.CreateMo(c.Request().Context(), req)
	if err != nil {
		return respondError(c, err)
	}
	return respondCreated(c, map[string]any{"mo_no": moNo})
}

// POST /manufacture-orders/:no/start
func (h *ProductionHandler) Start(c echo.Context) error {
	if err := h.productions.Start(c.Request().Context(), c.Param("no"), operatorOf(c)); err != nil {
		return respondError(c, err)
	}
	return respondOK(c, nil)
}

// POST /manufacture-orders/:no/complete
func (h *ProductionHandler) Complete(c echo.Context) error {
	var req struct {
		CompletedQty decimal.Decimal `json:"completed_qty"`
	}
	if err := c.Bind(&req); err != nil {
		return respondError(c, apperr.Validation("invalid request body"))
	}

	if err := h.productions.Complete(c.Request().Context(), usecase.CompleteMoInput{
		MoNo:         c.Param("no"),
		CompletedQty: req.CompletedQty,
		Operator:     operatorOf(c),
	}); err != nil {
		return respondError(c, err)
	}
	return respondOK(c, nil)
}

// GET /manufacture-orders/:no
func (h *ProductionHandler) GetMo(c echo.Context) error {
	mo, err := h.productions.GetMo(c.Request().Context(), c.Param("no"))
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, mo)
}

// GET /manufacture-orders
func (h *ProductionHandler) ListMos(c echo.Context) error {
	q := repo.MoQuery{
		SkuID:  c.QueryParam("sku_id"),
		Status: model.MoStatus(c.QueryParam("status")),
	}
	q.Page, _ = strconv.Atoi(c.QueryParam("page"))
	q.Limit, _ = strconv.Atoi(c.QueryParam("limit"))

	mos, total, err := h.productions.ListMos(c.Request().Context(), q)
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, paged{List: mos, Total: total, Page: q.Page, Limit: q.Limit})
}

// POST /manufacture-orders/:no/jobs
func (h *ProductionHandler) ReportJob(c echo.Context) error {
	var req usecase.JobReportInput
	if err := c.Bind(&req); err != nil {
		return respondError(c, apperr.Validation("invalid request body"))
	}
	req.MoNo = c.Param("no")
	req.Operator = operatorOf(c)

	jobNo, err := h.jobs.Report(c.Request().Context(), req)
	if err != nil {
		return respondError(c, err)
	}
	return respondCreated(c, map[string]any{"job_no": jobNo})
}

// GET /manufacture-orders/:no/jobs
func (h *ProductionHandler) ListJobs(c echo.Context) error {
	jobs, err := h.jobs.ListByMo(c.Request().Context(), c.Param("no"))
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, jobs)
}
