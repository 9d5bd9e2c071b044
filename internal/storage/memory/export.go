// internal/storage/memory/export.go
package memory

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/holeinone/coursecal/internal/geo"
	"github.com/holeinone/coursecal/pkg/core"
	geom "github.com/peterstace/simplefeatures/geom"
)

// ExportVersion is written into every export file.
const ExportVersion = 1

// CourseExport is the root JSON structure of an exported course.
// Footprint is a GeoJSON polygon of the outline on the X/Z plane. It is
// left out when the outline has fewer than three points or crosses itself,
// since a crossing ring is rejected when the GeoJSON is decoded.
type CourseExport struct {
	Version   int           `json:"version"`
	Course    core.Course   `json:"course"`
	Footprint *geom.Polygon `json:"footprint,omitempty"`
}

func buildExport(c core.Course) CourseExport {
	export := CourseExport{
		Version: ExportVersion,
		Course:  c,
	}
	if len(c.Waypoints) >= 3 {
		if fp, err := geo.NewFootprint(geo.Planar(c.Waypoints)); err == nil && fp.Simple {
			export.Footprint = &fp.Polygon
		}
	}
	return export
}

// exportFileName builds a sortable file name for a course.
func exportFileName(c core.Course, compress bool) string {
	session := c.SessionID
	if len(session) > 8 {
		session = session[:8]
	}
	name := fmt.Sprintf("course_%s_%04d_%s.json", c.CreatedAt.Format("20060102_150405"), c.ID, session)
	if compress {
		name += ".gz"
	}
	return name
}

// exportJSON writes the course to a (optionally gzipped) JSON file and
// returns its path.
func (b *Backend) exportJSON(c core.Course) (string, error) {
	outputPath := filepath.Join(b.cfg.OutputDir, exportFileName(c, b.cfg.CompressOutput))

	// Ensure output directory exists
	if err := os.MkdirAll(b.cfg.OutputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	export := buildExport(c)
	if b.cfg.CompressOutput {
		if err := writeGzipJSON(outputPath, export); err != nil {
			return "", err
		}
	} else {
		if err := writeJSON(outputPath, export); err != nil {
			return "", err
		}
	}
	return outputPath, nil
}

func writeJSON(path string, data CourseExport) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer closeInto(f, &err)

	return json.NewEncoder(f).Encode(data)
}

func writeGzipJSON(path string, data CourseExport) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer closeInto(f, &err)

	return encodeGzipJSON(f, data)
}

// encodeGzipJSON compresses the export into w. The gzip trailer is only
// written by Close, so its error is the one that tells a complete file from
// a truncated one.
func encodeGzipJSON(w io.Writer, data CourseExport) error {
	gzWriter := gzip.NewWriter(w)
	if err := json.NewEncoder(gzWriter).Encode(data); err != nil {
		gzWriter.Close()
		return err
	}
	if err := gzWriter.Close(); err != nil {
		return fmt.Errorf("finishing gzip stream: %w", err)
	}
	return nil
}

// closeInto closes c and keeps its error in *err unless one is already set.
func closeInto(c io.Closer, err *error) {
	if cerr := c.Close(); cerr != nil && *err == nil {
		*err = fmt.Errorf("closing export file: %w", cerr)
	}
}

// readExport decodes an export file, gzipped or not, by extension.
func readExport(path string) (CourseExport, error) {
	f, err := os.Open(path)
	if err != nil {
		return CourseExport{}, err
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return CourseExport{}, fmt.Errorf("opening gzip stream: %w", err)
		}
		defer gz.Close()
		r = gz
	}

	var export CourseExport
	if err := json.NewDecoder(r).Decode(&export); err != nil {
		return CourseExport{}, fmt.Errorf("decoding %s: %w", filepath.Base(path), err)
	}
	return export, nil
}

// isExportFile reports whether name looks like a course export.
func isExportFile(name string) bool {
	return strings.HasPrefix(name, "course_") &&
		(strings.HasSuffix(name, ".json") || strings.HasSuffix(name, ".json.gz"))
}
