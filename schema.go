// Copyright (C) The Lightning Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package enrich

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/eqtl-annotations/enrich/frame"
	"github.com/samber/lo"
	"gopkg.in/yaml.v3"
)

// Schema describes the column layout of the annotation tables and the
// fixed parameters of both enrichment pipelines.
type Schema struct {
	// Metadata columns that are never treated as annotations.
	ExcludedColumns []string `yaml:"excluded_columns"`
	// Columns whose name contains any of these substrings are
	// dropped on load.
	DropColumnPatterns []string `yaml:"drop_column_patterns"`

	DistanceSuffix   string  `yaml:"distance_suffix"`
	InPeakSuffix     string  `yaml:"in_peak_suffix"`
	NearPeakSuffix   string  `yaml:"near_peak_suffix"`
	NearPeakDistance float64 `yaml:"near_peak_distance"`

	PIPColumn    string    `yaml:"pip_column"`
	PIPBinEdges  []float64 `yaml:"pip_bin_edges"`
	PIPBinLabels []string  `yaml:"pip_bin_labels"`
	// Rows sharing these key values count once per PIP bin.
	GroupKeys []string `yaml:"group_keys"`

	BackgroundLabel string `yaml:"background_label"`

	// Display labels for annotation columns. Columns not listed are
	// shown with underscores replaced by spaces.
	Labels map[string]string `yaml:"labels"`
}

func DefaultSchema() *Schema {
	return &Schema{
		ExcludedColumns: []string{
			"phenotype_id", "variant_id", "pip", "af", "cs_id",
			"start_distance", "ma_samples", "ma_count",
			"pval_nominal", "slope", "slope_se", "bins",
		},
		DropColumnPatterns: []string{"splice"},
		DistanceSuffix:     "peak_dist",
		InPeakSuffix:       "_in_a_peak",
		NearPeakSuffix:     "_500bp_from_peak",
		NearPeakDistance:   500,
		PIPColumn:          "pip",
		PIPBinEdges:        []float64{0, 0.01, 0.1, 0.5, 0.9, 1},
		PIPBinLabels:       []string{"PIP<0.01", "0.01<PIP<0.1", "0.1<PIP<0.5", "0.5<PIP<0.9", "0.9<PIP"},
		GroupKeys:          []string{"phenotype_id", "variant_id"},
		BackgroundLabel:    "background_snps",
		Labels: map[string]string{
			"ATAC_peak_dist":                       "ATAC peak dist",
			"CTCF_peak_dist":                       "CTCF peak dist",
			"enhancer_d":                           "Enhancer",
			"promoter_d":                           "Promoter",
			"CTCF_binding_site_d":                  "CTCF binding site",
			"TF_binding_site_d":                    "TF binding site",
			"3_prime_UTR_variant_d":                "3' UTR",
			"5_prime_UTR_variant_d":                "5' UTR",
			"intron_variant_d":                     "Intron",
			"missense_variant_d":                   "Nonsynonymous",
			"synonymous_variant_d":                 "Synonymous",
			"open_chromatin_region_d":              "Open chromatin",
			"promoter_flanking_region_d":           "Promoter Flanking",
			"frameshift_variant_d":                 "Frameshift Variant",
			"stop_gained_d":                        "Stop Gained",
			"non_coding_transcript_exon_variant_d": "Non-coding transcript exon variant",
		},
	}
}

// LoadSchema reads YAML overrides from fnm on top of DefaultSchema. An
// empty fnm returns the defaults.
func LoadSchema(fnm string) (*Schema, error) {
	s := DefaultSchema()
	if fnm != "" {
		buf, err := os.ReadFile(fnm)
		if err != nil {
			return nil, err
		}
		// replace, don't merge into, the default bin labels
		s.PIPBinLabels = nil
		err = yaml.Unmarshal(buf, s)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", fnm, err)
		}
	}
	if len(s.PIPBinLabels) == 0 {
		s.PIPBinLabels = binLabels(s.PIPBinEdges)
	}
	err := s.Check()
	if err != nil {
		if fnm != "" {
			err = fmt.Errorf("%s: %w", fnm, err)
		}
		return nil, err
	}
	return s, nil
}

// Check returns an error if the schema cannot be used.
func (s *Schema) Check() error {
	switch {
	case s.DistanceSuffix == "":
		return errors.New("distance_suffix must not be empty")
	case s.InPeakSuffix == "" || s.NearPeakSuffix == "":
		return errors.New("in_peak_suffix and near_peak_suffix must not be empty")
	case s.InPeakSuffix == s.NearPeakSuffix:
		return errors.New("in_peak_suffix and near_peak_suffix must differ")
	case s.PIPColumn == "":
		return errors.New("pip_column must not be empty")
	case len(s.GroupKeys) == 0:
		return errors.New("group_keys must not be empty")
	case s.BackgroundLabel == "":
		return errors.New("background_label must not be empty")
	case len(s.PIPBinEdges) < 2:
		return fmt.Errorf("pip_bin_edges must have at least 2 values, got %d", len(s.PIPBinEdges))
	case !sort.SliceIsSorted(s.PIPBinEdges, func(i, j int) bool { return s.PIPBinEdges[i] < s.PIPBinEdges[j] }) ||
		len(lo.Uniq(s.PIPBinEdges)) != len(s.PIPBinEdges):
		return fmt.Errorf("pip_bin_edges must be strictly increasing, got %v", s.PIPBinEdges)
	case len(s.PIPBinLabels) != len(s.PIPBinEdges)-1:
		return fmt.Errorf("%d pip_bin_labels given for %d bins", len(s.PIPBinLabels), len(s.PIPBinEdges)-1)
	case len(lo.Uniq(s.PIPBinLabels)) != len(s.PIPBinLabels):
		return fmt.Errorf("pip_bin_labels must be unique, got %q", s.PIPBinLabels)
	}
	for _, key := range s.GroupKeys {
		if !lo.Contains(s.ExcludedColumns, key) {
			return fmt.Errorf("group key %q must also be listed in excluded_columns", key)
		}
	}
	if !lo.Contains(s.ExcludedColumns, s.PIPColumn) {
		return fmt.Errorf("pip column %q must also be listed in excluded_columns", s.PIPColumn)
	}
	return nil
}

// binLabels returns labels like "PIP<0.01", "0.01<PIP<0.1", "0.9<PIP".
func binLabels(edges []float64) []string {
	if len(edges) < 2 {
		return nil
	}
	labels := make([]string, len(edges)-1)
	for i := range labels {
		switch {
		case i == 0:
			labels[i] = fmt.Sprintf("PIP<%g", edges[1])
		case i == len(labels)-1:
			labels[i] = fmt.Sprintf("%g<PIP", edges[i])
		default:
			labels[i] = fmt.Sprintf("%g<PIP<%g", edges[i], edges[i+1])
		}
	}
	if len(labels) == 1 {
		labels[0] = fmt.Sprintf("%g<PIP<%g", edges[0], edges[1])
	}
	return labels
}

// Label returns the display label for an annotation column.
func (s *Schema) Label(annotation string) string {
	if label, ok := s.Labels[annotation]; ok {
		return label
	}
	return strings.ReplaceAll(annotation, "_", " ")
}

// Annotations returns the names of the annotation columns of f, in
// column order.
func (s *Schema) Annotations(f *frame.Frame) []string {
	return lo.Filter(f.Names(), func(name string, _ int) bool {
		return !lo.Contains(s.ExcludedColumns, name)
	})
}
