package usecase

import (
	"bytes"
	"context"
	"fmt"

	repo "erp/internal/repository"

	"github.com/xuri/excelize/v2"
)

type ReportUsecase struct {
	tx repo.TransactionManager
}

func NewReportUsecase(tx repo.TransactionManager) *ReportUsecase {
	return &ReportUsecase{tx: tx}
}

// ExportMovementsは在庫流水のxlsx。フィルタは一覧APIと同じ。
func (u *ReportUsecase) ExportMovements(ctx context.Context, q repo.MovementQuery) ([]byte, error) {
	if q.Page <= 0 {
		q.Page = 1
	}
	if q.Limit <= 0 || q.Limit > 10000 {
		q.Limit = 10000
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Movements"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"Move No", "SKU", "Warehouse", "Type", "Qty", "Before", "After", "Unit Cost", "Source Type", "Source No", "Operator", "Created At"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, err
		}
	}

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		moves, _, err := r.Stocks().ListMovements(ctx, q)
		if err != nil {
			return err
		}
		for i, m := range moves {
			row := i + 2
			values := []any{
				m.MoveNo, m.SkuID, m.WarehouseID, string(m.MoveType),
				m.Qty.String(), m.BeforeQty.String(), m.AfterQty.String(), m.UnitCost.String(),
				string(m.SourceType), m.SourceNo, m.Operator,
				m.CreatedAt.Format("2006-01-02 15:04:05"),
			}
			for col, v := range values {
				cell, _ := excelize.CoordinatesToCellName(col+1, row)
				if err := f.SetCellValue(sheet, cell, v); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ExportCostSheetsは原価表のxlsx。
func (u *ReportUsecase) ExportCostSheets(ctx context.Context, q repo.CostQuery) ([]byte, error) {
	if q.Page <= 0 {
		q.Page = 1
	}
	if q.Limit <= 0 || q.Limit > 10000 {
		q.Limit = 10000
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "CostSheets"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"Sheet No", "SKU", "Period", "Type", "Qty", "Material Cost", "Labor Cost", "Unit Cost", "Total Cost", "Source No"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, err
		}
	}

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		sheets, _, err := r.Costs().List(ctx, q)
		if err != nil {
			return err
		}
		for i, s := range sheets {
			row := i + 2
			values := []any{
				s.SheetNo, s.SkuID, s.Period, string(s.CostType),
				s.Qty.String(), s.MaterialCost.String(), s.LaborCost.String(),
				s.UnitCost.String(), s.TotalCost.String(), s.SourceNo,
			}
			for col, v := range values {
				cell, _ := excelize.CoordinatesToCellName(col+1, row)
				if err := f.SetCellValue(sheet, cell, v); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ReportFilenameはContent-Disposition用
func ReportFilename(kind string) string {
	return fmt.Sprintf("%s-%s.xlsx", kind, CurrentPeriod())
}
