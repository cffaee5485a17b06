// Package ingest ties detection and the format parsers together: given a
// file path it classifies the file, dispatches the matching parser and
// returns the finished geometry.
package ingest

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/OpenEMTools/emgeo/pkg/detect"
	"github.com/OpenEMTools/emgeo/pkg/geometry"
	"github.com/OpenEMTools/emgeo/pkg/kicad"
	"github.com/OpenEMTools/emgeo/pkg/qucs"
	"github.com/OpenEMTools/emgeo/pkg/sonnet"
)

// Load parses the layout file at path without logging.
func Load(path string) (*geometry.Geometry, error) {
	return LoadWithLogger(path, nil)
}

// LoadWithLogger parses the layout file at path. File-level failures
// (unreadable file, unknown format) propagate to the caller; record-level
// failures surface only as warnings on the returned geometry.
func LoadWithLogger(path string, log *zap.Logger) (*geometry.Geometry, error) {
	if log == nil {
		log = zap.NewNop()
	}

	result, err := detect.File(path)
	if err != nil {
		return nil, err
	}
	if result.Warning != "" {
		log.Warn("format detection", zap.String("warning", result.Warning))
	}

	var g *geometry.Geometry
	switch result.Format {
	case detect.FormatQucs:
		g, err = qucs.NewParser(log).ParseFile(path)
	case detect.FormatSonnet:
		g, err = sonnet.NewParser(log).ParseFile(path)
	case detect.FormatKiCad:
		g, err = kicad.NewParser(log).ParseFile(path)
	default:
		return nil, fmt.Errorf("%w: no parser for %q", detect.ErrUnknownFormat, result.Format)
	}
	if err != nil {
		return nil, err
	}

	for _, w := range g.Warnings {
		log.Warn("parse degradation", zap.String("format", string(result.Format)), zap.String("warning", w))
	}
	log.Info("layout loaded",
		zap.String("format", string(result.Format)),
		zap.Int("conductors", len(g.Conductors)),
		zap.Int("ports", len(g.Ports)))

	return g, nil
}
