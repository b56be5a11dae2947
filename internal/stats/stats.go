// Package stats collects line and byte counters for a reading run.
package stats

import (
	"fmt"
	"os"
	"time"

	"github.com/shirou/gopsutil/v3/process"
)

// Collector counts lines and bytes as they pass through.
type Collector struct {
	start time.Time
	lines int64
	bytes int64
}

// NewCollector returns a Collector with the clock started.
func NewCollector() *Collector {
	return &Collector{start: time.Now()}
}

// Record accounts one delivered line.
func (c *Collector) Record(line []byte) {
	c.lines++
	c.bytes += int64(len(line))
}

// Lines reports the number of recorded lines.
func (c *Collector) Lines() int64 {
	return c.lines
}

// Bytes reports the total recorded byte count.
func (c *Collector) Bytes() int64 {
	return c.bytes
}

// Summary renders a one-line human readable summary. The process RSS is
// included when it can be determined; failures to read it are not worth
// failing the run over.
func (c *Collector) Summary() string {
	elapsed := time.Since(c.start).Round(time.Millisecond)
	s := fmt.Sprintf("%d lines, %d bytes in %s", c.lines, c.bytes, elapsed)
	if rss, err := processRSS(); err == nil {
		s += fmt.Sprintf(", rss %.1f MB", float64(rss)/1024/1024)
	}
	return s
}

// processRSS returns the resident set size of the current process.
func processRSS() (uint64, error) {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return 0, fmt.Errorf("lookup process: %w", err)
	}
	mem, err := p.MemoryInfo()
	if err != nil {
		return 0, fmt.Errorf("memory info: %w", err)
	}
	return mem.RSS, nil
}
