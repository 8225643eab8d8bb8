package importer

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/jengzang/routesync/internal/models"
	"github.com/jengzang/routesync/pkg/logger"
)

// RouteSaver persists parsed routes (the sqlite repository)
type RouteSaver interface {
	SaveRoute(ctx context.Context, route models.RouteRecord, source string) error
}

// Result summarizes one directory import
type Result struct {
	Imported int      `json:"imported"`
	Failed   int      `json:"failed"`
	Errors   []string `json:"errors,omitempty"`
}

// Importer loads .fit activity files into the route database
type Importer struct {
	saver RouteSaver
	log   logger.Logger
}

// New creates an importer
func New(saver RouteSaver, log logger.Logger) *Importer {
	if log == nil {
		log = logger.Nop()
	}
	return &Importer{saver: saver, log: log.With("component", "importer")}
}

// ImportFile parses and saves one file
func (im *Importer) ImportFile(ctx context.Context, path string) (models.RouteRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return models.RouteRecord{}, fmt.Errorf("failed to read %s: %w", path, err)
	}

	route, err := ParseFIT(data)
	if err != nil {
		return models.RouteRecord{}, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	if err := im.saver.SaveRoute(ctx, route, filepath.Base(path)); err != nil {
		return models.RouteRecord{}, fmt.Errorf("failed to save %s: %w", path, err)
	}
	return route, nil
}

// ImportDir imports every .fit file below dir. A broken file is counted and
// skipped; only a walk failure or cancellation aborts the import.
func (im *Importer) ImportDir(ctx context.Context, dir string) (Result, error) {
	ctx = logger.WithAction(ctx, "import")
	var res Result

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".fit") {
			return nil
		}

		route, err := im.ImportFile(ctx, path)
		if err != nil {
			res.Failed++
			res.Errors = append(res.Errors, err.Error())
			im.log.Warn(ctx, "skipping activity file", "path", path, "error", err.Error())
			return nil
		}

		res.Imported++
		im.log.Debug(ctx, "imported activity", "path", path, "route_id", route.ID.String(),
			"activity_type", string(route.ActivityType), "samples", len(route.Samples))
		return nil
	})
	if err != nil {
		return res, fmt.Errorf("import of %s aborted: %w", dir, err)
	}

	im.log.Info(ctx, "import finished", "dir", dir, "imported", res.Imported, "failed", res.Failed)
	return res, nil
}
