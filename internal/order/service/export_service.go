package service

import (
	"context"
	"fmt"
	"time"

	"github.com/bitfantasy/joinery/internal/order/entity"
	"github.com/bitfantasy/joinery/internal/order/repository"
	"github.com/xuri/excelize/v2"
)

// ItemsSheet is the worksheet name of the item schedule export.
const ItemsSheet = "Items"

var itemExportHeaders = []string{
	"Code", "Description", "Floor", "Room", "Type", "Qty", "Status",
	"Production started", "Production completed", "Workshop QC", "Dispatched", "Installed", "Site QC",
}

// ExportService renders project schedules as spreadsheets.
type ExportService struct {
	repos *repository.Repositories
}

func NewExportService(repos *repository.Repositories) *ExportService {
	return &ExportService{repos: repos}
}

// ExportProjectItems writes one row per item with its status and phase dates.
func (s *ExportService) ExportProjectItems(ctx context.Context, projectID string) (*excelize.File, string, error) {
	project, err := s.repos.Project.FindByID(ctx, projectID)
	if err != nil {
		return nil, "", err
	}
	items, err := s.repos.Item.ListByProject(ctx, projectID)
	if err != nil {
		return nil, "", fmt.Errorf("list items: %w", err)
	}

	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", ItemsSheet); err != nil {
		return nil, "", err
	}

	header, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	for i, h := range itemExportHeaders {
		col, _ := excelize.ColumnNumberToName(i + 1)
		cell := col + "1"
		f.SetCellValue(ItemsSheet, cell, h)
		f.SetCellStyle(ItemsSheet, cell, cell, header)
	}

	for i, item := range items {
		row := i + 2
		values := []interface{}{
			item.ItemCode,
			item.Description,
			item.Floor,
			item.Room,
			item.ItemType,
			item.Quantity,
			string(entity.NormalizeItemStatus(item.Status)),
			formatDate(item.ProductionStartedAt),
			formatDate(item.ProductionCompletedAt),
			qcResult(item.WorkshopQCPassed, item.WorkshopQCAt),
			formatDate(item.DispatchedAt),
			formatDate(item.InstalledAt),
			qcResult(item.SiteQCPassed, item.SiteQCAt),
		}
		for c, v := range values {
			col, _ := excelize.ColumnNumberToName(c + 1)
			f.SetCellValue(ItemsSheet, fmt.Sprintf("%s%d", col, row), v)
		}
	}

	widths := []float64{12, 40, 8, 16, 14, 6, 22, 14, 14, 18, 14, 14, 18}
	for i, w := range widths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(ItemsSheet, col, col, w)
	}

	filename := fmt.Sprintf("%s_items_%s.xlsx", project.Code, time.Now().Format("20060102"))
	return f, filename, nil
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}

func qcResult(passed *bool, at *time.Time) string {
	if passed == nil {
		return ""
	}
	result := "failed"
	if *passed {
		result = "passed"
	}
	if at != nil {
		result += " " + at.Format("2006-01-02")
	}
	return result
}
