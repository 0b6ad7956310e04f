package output

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/zan8in/squidscan/pkg/proxyscan"
)

type OutputJson struct {
	Filename string
	mutex    sync.Mutex
}

type JsonReport struct {
	ID          string         `json:"id"`
	Target      string         `json:"target"`
	Proxy       string         `json:"proxy"`
	Total       int            `json:"total"`
	Probed      int            `json:"probed"`
	Interrupted bool           `json:"interrupted"`
	Duration    string         `json:"duration"`
	Failures    map[string]int `json:"failures,omitempty"`
	Results     []JsonInfo     `json:"results"`
}

type JsonInfo struct {
	Port   int    `json:"port"`
	Status string `json:"status"`
}

func NewOutputJson(filename string) *OutputJson {
	return &OutputJson{Filename: filename}
}

// NewJsonReport flattens a summary. Results keep the summary's port order.
func NewJsonReport(s *proxyscan.Summary) JsonReport {
	report := JsonReport{
		ID:          s.ID,
		Target:      s.Target,
		Proxy:       s.Proxy,
		Total:       s.Total,
		Probed:      s.Probed,
		Interrupted: s.Interrupted,
		Duration:    s.Duration.Truncate(time.Millisecond).String(),
		Results:     make([]JsonInfo, 0, len(s.Results)),
	}
	if len(s.Failures) > 0 {
		report.Failures = make(map[string]int, len(s.Failures))
		kinds := make([]proxyscan.FailureKind, 0, len(s.Failures))
		for k := range s.Failures {
			kinds = append(kinds, k)
		}
		sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
		for _, k := range kinds {
			report.Failures[k.String()] = s.Failures[k]
		}
	}
	for _, r := range s.Results {
		report.Results = append(report.Results, JsonInfo{Port: r.Port, Status: string(r.Status())})
	}
	return report
}

// Write replaces the file with the report of s.
func (o *OutputJson) Write(s *proxyscan.Summary) error {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	data, err := json.MarshalIndent(NewJsonReport(s), "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(o.Filename); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.Wrap(err, "could not create output directory")
		}
	}

	tmp := o.Filename + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return errors.Wrapf(err, "could not write %s", tmp)
	}
	return errors.Wrap(os.Rename(tmp, o.Filename), "could not move report into place")
}
