// Package repo provides the spec11 snapshot stores and job status sources
package repo

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	perr "spec11/internal/platform/errors"
	"spec11/internal/platform/logger"
	"spec11/internal/services/spec11/domain"
)

// ReportFilePrefix names the per-date report files produced by the batch job
const ReportFilePrefix = "SPEC11_MONTHLY_REPORT_"

// maxLine bounds one registrar line; large registrars carry thousands of matches
const maxLine = 16 << 20

// FileStore reads JSON-lines report files laid out as <dir>/<yyyy-MM>/SPEC11_MONTHLY_REPORT_<yyyy-MM-dd>.
// The first line of each file is a header and is skipped
type FileStore struct {
	Dir string
	log *logger.Logger
}

var _ domain.SnapshotStore = (*FileStore)(nil)

// NewFileStore returns a store rooted at dir
func NewFileStore(dir string) *FileStore {
	return &FileStore{Dir: dir, log: logger.Named("spec11.filestore")}
}

// Path returns the report file location for date
func (s *FileStore) Path(date time.Time) string {
	date = domain.Day(date)
	return filepath.Join(s.Dir, date.Format("2006-01"), ReportFilePrefix+domain.FormatDay(date))
}

// Snapshot loads the report for date; a missing file is an empty snapshot
func (s *FileStore) Snapshot(ctx context.Context, date time.Time) (domain.Snapshot, error) {
	date = domain.Day(date)
	out := domain.Snapshot{Date: date}
	if err := ctx.Err(); err != nil {
		return out, err
	}

	path := s.Path(date)
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		s.log.Debug().Str("path", path).Msg("spec11: no report file")
		return out, nil
	}
	if err != nil {
		return out, perr.Wrapf(err, perr.ErrorCodeUnavailable, "open %s", path)
	}
	defer f.Close()

	regs, err := decodeReport(f)
	if err != nil {
		return out, perr.Wrapf(err, perr.CodeOf(err), "parse %s", path)
	}
	out.Registrars = regs
	return out, nil
}

// PreviousDateWithData walks back one day at a time from date-1 to since
func (s *FileStore) PreviousDateWithData(ctx context.Context, date, since time.Time) (time.Time, bool, error) {
	since = domain.Day(since)
	for d := domain.Day(date).AddDate(0, 0, -1); !d.Before(since); d = d.AddDate(0, 0, -1) {
		snap, err := s.Snapshot(ctx, d)
		if err != nil {
			return time.Time{}, false, err
		}
		if !snap.IsEmpty() {
			return d, true, nil
		}
	}
	return time.Time{}, false, nil
}

// decodeReport parses the header-prefixed JSON-lines body of a report file
func decodeReport(r io.Reader) ([]domain.RegistrarThreatMatches, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64<<10), maxLine)

	var out []domain.RegistrarThreatMatches
	seen := map[string]bool{}
	n := 0
	for sc.Scan() {
		n++
		if n == 1 {
			continue
		}
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		var reg domain.RegistrarThreatMatches
		if err := json.Unmarshal([]byte(line), &reg); err != nil {
			return nil, perr.Wrapf(err, perr.ErrorCodeJSON, "line %d", n)
		}
		if reg.RegistrarEmail == "" {
			return nil, perr.JSONErrf("line %d: missing registrarEmailAddress", n)
		}
		if seen[reg.RegistrarEmail] {
			return nil, perr.JSONErrf("line %d: duplicate registrar %s", n, reg.RegistrarEmail)
		}
		seen[reg.RegistrarEmail] = true
		out = append(out, reg)
	}
	if err := sc.Err(); err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeUnavailable, "read line %d", n+1)
	}
	return out, nil
}

// WriteReport writes snap in the same layout the batch job produces
func (s *FileStore) WriteReport(snap domain.Snapshot) error {
	path := s.Path(snap.Date)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeUnavailable, "mkdir %s", filepath.Dir(path))
	}
	f, err := os.Create(path)
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeUnavailable, "create %s", path)
	}
	w := bufio.NewWriter(f)
	fmt.Fprintf(w, "Map from registrar email / name to detected subdomain threats:\n")
	enc := json.NewEncoder(w)
	for _, r := range snap.Registrars {
		if err := enc.Encode(r); err != nil {
			_ = f.Close()
			return perr.Wrapf(err, perr.ErrorCodeJSON, "encode %s", r.RegistrarEmail)
		}
	}
	if err := w.Flush(); err != nil {
		_ = f.Close()
		return perr.Wrapf(err, perr.ErrorCodeUnavailable, "write %s", path)
	}
	return f.Close()
}
