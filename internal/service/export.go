package service

import (
	"context"
	"fmt"
	"io"
	"sort"
	"waseet-api/internal/entity"
	"waseet-api/internal/lifecycle"

	"github.com/xuri/excelize/v2"
)

var exportFixedColumns = []string{"id", "created_at", "updated_at", "status", "title", "summary", "admin_notes"}

// Export writes every record of the domain matching filter as one XLSX
// sheet. Raw field keys become extra columns, sorted by name.
func (s *RequestService) Export(ctx context.Context, domain lifecycle.Domain, filter entity.RequestFilter, w io.Writer) error {
	if err := checkRequestDomain(domain); err != nil {
		return err
	}

	requests, err := s.listAll(ctx, domain, filter)
	if err != nil {
		return err
	}

	keys := rawFieldKeys(requests)

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := domain.String()
	if err = f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}

	header := make([]any, 0, len(exportFixedColumns)+len(keys))
	for _, c := range exportFixedColumns {
		header = append(header, c)
	}
	for _, k := range keys {
		header = append(header, k)
	}
	if err = f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}

	for i, r := range requests {
		row := []any{
			r.Id.String(),
			formatTime(r.CreatedAt),
			formatTime(r.UpdatedAt),
			r.Status.String(),
			r.Curated.Title,
			r.Curated.Summary,
			r.AdminNotes,
		}
		for _, k := range keys {
			row = append(row, r.RawFields.String(k))
		}

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err = f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}

	if err = f.Write(w); err != nil {
		return fmt.Errorf("write %s export: %w", domain, err)
	}

	s.log.WithField("domain", domain).WithField("rows", len(requests)).Info("requests exported")

	return nil
}

func (s *RequestService) listAll(ctx context.Context, domain lifecycle.Domain, filter entity.RequestFilter) ([]entity.Request, error) {
	all := make([]entity.Request, 0)
	for offset := 0; ; offset += entity.MaxPageLimit {
		page, err := s.requestRepo.ListRequests(ctx, domain, filter, entity.NewPaginationInput(entity.MaxPageLimit, offset))
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) < entity.MaxPageLimit {
			return all, nil
		}
	}
}

func rawFieldKeys(requests []entity.Request) []string {
	seen := make(map[string]bool)
	keys := make([]string, 0)
	for _, r := range requests {
		for k := range r.RawFields {
			if !seen[k] {
				seen[k] = true
				keys = append(keys, k)
			}
		}
	}
	sort.Strings(keys)

	return keys
}
