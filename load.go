// Copyright (C) The Lightning Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package enrich

import (
	"fmt"
	"strings"

	"github.com/eqtl-annotations/enrich/frame"
	log "github.com/sirupsen/logrus"
)

// groupList is a repeatable -group label=path flag.
type groupList []groupSpec

type groupSpec struct {
	Label string
	Path  string
}

func (gl *groupList) String() string {
	var parts []string
	for _, g := range *gl {
		parts = append(parts, g.Label+"="+g.Path)
	}
	return strings.Join(parts, " ")
}

func (gl *groupList) Set(s string) error {
	label, path, ok := strings.Cut(s, "=")
	switch {
	case !ok || label == "" || path == "":
		return fmt.Errorf("invalid group %q: expected label=path", s)
	case strings.ContainsAny(label, "/\\"):
		return fmt.Errorf("invalid group label %q: must not contain a path separator", label)
	}
	for _, g := range *gl {
		if g.Label == label {
			return fmt.Errorf("duplicate group label %q", label)
		}
	}
	*gl = append(*gl, groupSpec{Label: label, Path: path})
	return nil
}

// loadFrame reads a table and derives its proximity annotations.
func (s *Schema) loadFrame(label, path string) (*frame.Frame, error) {
	log.Infof("loading %s", path)
	f, err := frame.Load(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", label, err)
	}
	err = s.DeriveProximity(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %s: %w", label, path, err)
	}
	log.WithFields(log.Fields{
		"label":   label,
		"path":    path,
		"rows":    f.Rows(),
		"columns": len(f.Names()),
	}).Info("loaded table")
	return f, nil
}

// loadGroups loads the group tables, up to threads at a time, and
// returns them in the order given.
func (s *Schema) loadGroups(specs []groupSpec, threads int) ([]Group, error) {
	groups := make([]Group, len(specs))
	throttle := throttle{Max: threads}
	for i, spec := range specs {
		throttle.Go(func() error {
			f, err := s.loadFrame(spec.Label, spec.Path)
			if err != nil {
				return err
			}
			groups[i] = Group{Label: spec.Label, Frame: f}
			return nil
		})
	}
	err := throttle.Wait()
	if err != nil {
		return nil, err
	}
	return groups, nil
}
