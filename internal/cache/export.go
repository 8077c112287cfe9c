// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/research-supervisor/pkg/types"
)

// Export is the document written by ExportYAML and ExportJSON.
type Export struct {
	Count   int            `json:"count" yaml:"count"`
	Records []types.Record `json:"records" yaml:"records"`
}

// ExportYAML writes every cached record to w as YAML.
func (s *Store) ExportYAML(ctx context.Context, w io.Writer) error {
	doc, err := s.export(ctx)
	if err != nil {
		return err
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return enc.Close()
}

// ExportJSON writes every cached record to w as indented JSON, using the
// same keys as the HTTP report.
func (s *Store) ExportJSON(ctx context.Context, w io.Writer) error {
	doc, err := s.export(ctx)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	return nil
}

func (s *Store) export(ctx context.Context) (Export, error) {
	records, err := s.All(ctx)
	if err != nil {
		return Export{}, fmt.Errorf("querying for export: %w", err)
	}
	return Export{Count: len(records), Records: records}, nil
}
