package export

import (
	"bytes"
	"fmt"

	"shareit/internal/models"

	"github.com/xuri/excelize/v2"
)

const timeLayout = "2006-01-02 15:04"

var headers = []string{"ID", "Item", "Booker", "Start", "End", "Status"}

var statusColors = map[models.BookingStatus]string{
	models.StatusWaiting:  "#FFF2CC",
	models.StatusApproved: "#E2EFDA",
	models.StatusRejected: "#F8CBAD",
}

// XLSXExporter renders booking lists as an Excel workbook.
type XLSXExporter struct {
	sheet string
}

func NewXLSXExporter() *XLSXExporter {
	return &XLSXExporter{sheet: models.ExportSheetName}
}

func (e *XLSXExporter) WriteBookings(bookings []*models.Booking) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(e.sheet)
	if err != nil {
		return nil, fmt.Errorf("error creating sheet: %w", err)
	}
	f.SetActiveSheet(index)
	_ = f.DeleteSheet("Sheet1")

	if err := e.writeHeaders(f); err != nil {
		return nil, err
	}

	styles, err := e.statusStyles(f)
	if err != nil {
		return nil, err
	}

	for i, b := range bookings {
		row := i + 2
		values := []interface{}{
			b.ID,
			b.Item.Name,
			b.Booker.Name,
			b.Start.UTC().Format(timeLayout),
			b.End.UTC().Format(timeLayout),
			string(b.Status),
		}
		first, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow(e.sheet, first, &values); err != nil {
			return nil, fmt.Errorf("error writing row %d: %w", row, err)
		}
		if style, ok := styles[b.Status]; ok {
			cell, _ := excelize.CoordinatesToCellName(len(headers), row)
			_ = f.SetCellStyle(e.sheet, cell, cell, style)
		}
	}

	_ = f.SetColWidth(e.sheet, "A", "A", 8)
	_ = f.SetColWidth(e.sheet, "B", "C", 25)
	_ = f.SetColWidth(e.sheet, "D", "F", 18)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("error writing workbook: %w", err)
	}
	return bytes.Clone(buf.Bytes()), nil
}

func (e *XLSXExporter) writeHeaders(f *excelize.File) error {
	row := make([]interface{}, len(headers))
	for i, h := range headers {
		row[i] = h
	}
	if err := f.SetSheetRow(e.sheet, "A1", &row); err != nil {
		return fmt.Errorf("error writing headers: %w", err)
	}

	style, err := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return fmt.Errorf("error creating header style: %w", err)
	}
	last, _ := excelize.CoordinatesToCellName(len(headers), 1)
	return f.SetCellStyle(e.sheet, "A1", last, style)
}

func (e *XLSXExporter) statusStyles(f *excelize.File) (map[models.BookingStatus]int, error) {
	styles := make(map[models.BookingStatus]int, len(statusColors))
	for status, color := range statusColors {
		id, err := f.NewStyle(&excelize.Style{
			Fill: excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
		})
		if err != nil {
			return nil, fmt.Errorf("error creating %s style: %w", status, err)
		}
		styles[status] = id
	}
	return styles, nil
}
