package httpapi

import (
	"bytes"
	"fmt"
	"time"

	"smarthub/internal/domain"

	"github.com/xuri/excelize/v2"
)

const samplesSheet = "Samples"

// SamplesExportHeader 导出表头
var SamplesExportHeader = []string{
	"ID",
	"Device Datetime",
	"Recorded At",
	"Temperature",
	"Presence",
	"Fan",
	"Light",
}

var samplesColumnWidths = []float64{28, 24, 24, 14, 12, 8, 8}

// GenerateSamplesExport 生成采样导出 Excel（一行一个采样，按时间正序）
func GenerateSamplesExport(samples []*domain.SensorSample) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(samplesSheet)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	// 删除默认的 Sheet1
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to delete default sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	for col, header := range SamplesExportHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := f.SetCellValue(samplesSheet, cell, header); err != nil {
			return nil, fmt.Errorf("failed to set header cell %s: %w", cell, err)
		}
		if err := f.SetCellStyle(samplesSheet, cell, cell, headerStyle); err != nil {
			return nil, fmt.Errorf("failed to set header style: %w", err)
		}
		name, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			return nil, fmt.Errorf("failed to convert column number: %w", err)
		}
		if err := f.SetColWidth(samplesSheet, name, name, samplesColumnWidths[col]); err != nil {
			return nil, fmt.Errorf("failed to set column width: %w", err)
		}
	}

	for i, s := range samples {
		row := []any{
			s.ID,
			s.Datetime,
			s.CurrentTime.UTC().Format(time.RFC3339),
			nil,
			nil,
			yesNo(s.Fan),
			yesNo(s.Light),
		}
		if s.Temperature != nil {
			row[3] = *s.Temperature
		}
		if s.Presence != nil {
			row[4] = yesNo(*s.Presence)
		}

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := f.SetSheetRow(samplesSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func yesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}
