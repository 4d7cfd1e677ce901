package runlog

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"equity-screener/internal/screening"
)

const fileExt = ".jsonl"

var ist = time.FixedZone("IST", 19800)

// Pick is one ranked symbol as journaled.
type Pick struct {
	Symbol       string  `json:"symbol"`
	Score        float64 `json:"score"`
	PEGEstimated bool    `json:"peg_estimated,omitempty"`
}

// Entry is one screening run, one JSON line per run.
type Entry struct {
	Time         string             `json:"time"`
	RunID        string             `json:"run_id"`
	Criteria     screening.Criteria `json:"criteria"`
	Universe     int                `json:"universe"`
	Scanned      int                `json:"scanned"`
	Disqualified map[string]int     `json:"disqualified"`
	EarlyStopped bool               `json:"early_stopped"`
	TimedOut     bool               `json:"timed_out"`
	DurationMs   int64              `json:"duration_ms"`
	Picks        []Pick             `json:"picks"`
}

// Journal appends screening runs to daily files named by IST date.
type Journal struct {
	mu  sync.Mutex
	dir string
	now func() time.Time
}

func New(dir string) *Journal {
	if dir == "" {
		dir = "logs/screens"
	}
	return &Journal{dir: dir, now: time.Now}
}

// Dir returns the journal directory.
func (j *Journal) Dir() string { return j.dir }

func (j *Journal) dailyPath(t time.Time) string {
	return filepath.Join(j.dir, t.In(ist).Format("2006-01-02")+fileExt)
}

// Append journals r. Results served from the result cache are skipped since
// their run is already on file.
func (j *Journal) Append(r *screening.ScreenResult) error {
	if r == nil || r.Cached {
		return nil
	}
	j.mu.Lock()
	defer j.mu.Unlock()

	now := j.now().In(ist)
	e := Entry{
		Time:         now.Format("2006-01-02 15:04:05"),
		RunID:        r.RunID,
		Criteria:     r.Criteria,
		Universe:     len(r.Universe),
		Scanned:      r.Scanned,
		Disqualified: r.Disqualified,
		EarlyStopped: r.EarlyStopped,
		TimedOut:     r.TimedOut,
		DurationMs:   r.Duration.Milliseconds(),
		Picks:        make([]Pick, 0, len(r.Candidates)),
	}
	for _, c := range r.Candidates {
		e.Picks = append(e.Picks, Pick{Symbol: c.Symbol, Score: c.MatchScore, PEGEstimated: c.PEGEstimated})
	}

	p := j.dailyPath(now)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(p, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	b, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to encode run %s: %w", r.RunID, err)
	}
	_, err = fmt.Fprintln(f, string(b))
	return err
}

// CompressOlder gzips daily files not modified within retentionDays and
// returns how many were compressed. A non-positive retention keeps
// everything as is.
func (j *Journal) CompressOlder(retentionDays int) (int, error) {
	if retentionDays <= 0 {
		return 0, nil
	}
	j.mu.Lock()
	defer j.mu.Unlock()

	entries, err := os.ReadDir(j.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}

	cutoff := j.now().AddDate(0, 0, -retentionDays)
	compressed := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), fileExt) {
			continue
		}
		info, err := entry.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			continue
		}
		p := filepath.Join(j.dir, entry.Name())
		if err := gzipFile(p); err != nil {
			return compressed, err
		}
		compressed++
	}
	return compressed, nil
}

// gzipFile replaces p with p.gz. An existing archive wins and p is dropped.
func gzipFile(p string) error {
	gz := p + ".gz"
	if _, err := os.Stat(gz); err == nil {
		return os.Remove(p)
	}

	in, err := os.Open(p)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(gz, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	gw := gzip.NewWriter(out)
	if _, err := io.Copy(gw, in); err != nil {
		gw.Close()
		out.Close()
		os.Remove(gz)
		return err
	}
	if err := gw.Close(); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Remove(p)
}
