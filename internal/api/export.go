package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/nerrad567/rackview-core/internal/inventory"
)

// handleExport streams the full inventory as an XLSX workbook with one
// sheet for racks and one for devices.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	racks, err := s.inventory.ListRacks(ctx)
	if err != nil {
		s.logger.Error("export: failed to list racks", "error", err)
		writeStorageError(w)
		return
	}

	f := excelize.NewFile()
	defer f.Close() //nolint:errcheck // In-memory workbook

	if err := buildRacksSheet(f, racks); err != nil {
		s.logger.Error("export: failed to build racks sheet", "error", err)
		writeStorageError(w)
		return
	}

	if err := s.buildDevicesSheet(ctx, f, racks); err != nil {
		s.logger.Error("export: failed to build devices sheet", "error", err)
		writeStorageError(w)
		return
	}

	filename := fmt.Sprintf("rackview_export_%s.xlsx", time.Now().UTC().Format("20060102"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if err := f.Write(w); err != nil {
		s.logger.Error("export: failed to write workbook", "error", err)
	}
}

// buildRacksSheet renames the default sheet to Racks and fills it.
func buildRacksSheet(f *excelize.File, racks []inventory.Rack) error {
	const sheet = "Racks"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}

	headers := []string{"ID", "Name", "Position"}
	for col, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}

	for row, rack := range racks {
		values := []any{rack.ID, rack.Name, rack.Position}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}
	return nil
}

// buildDevicesSheet adds a Devices sheet with one row per device and
// its address bindings flattened to comma-separated lists.
func (s *Server) buildDevicesSheet(ctx context.Context, f *excelize.File, racks []inventory.Rack) error {
	const sheet = "Devices"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	headers := []string{"ID", "Rack", "Kind", "Label", "IP Addresses", "MAC Addresses", "Created At"}
	for col, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}

	row := 2
	for _, rack := range racks {
		devices, err := s.inventory.ListDevicesByRack(ctx, rack.ID)
		if err != nil {
			return err
		}
		for _, d := range devices {
			values := []any{
				d.ID, rack.Name, string(d.Kind), d.Label,
				joinIPs(d.IPs), joinMACs(d.MACs), d.CreatedAt,
			}
			for col, v := range values {
				cell, _ := excelize.CoordinatesToCellName(col+1, row)
				if err := f.SetCellValue(sheet, cell, v); err != nil {
					return err
				}
			}
			row++
		}
	}
	return nil
}

func joinIPs(bindings []inventory.IPBinding) string {
	addrs := make([]string, len(bindings))
	for i, b := range bindings {
		addrs[i] = b.Address
	}
	return strings.Join(addrs, ", ")
}

func joinMACs(bindings []inventory.MACBinding) string {
	addrs := make([]string, len(bindings))
	for i, b := range bindings {
		addrs[i] = b.Address
	}
	return strings.Join(addrs, ", ")
}
