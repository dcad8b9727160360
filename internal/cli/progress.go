package cli

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/cperrin88/cavern/pkg/model"
)

// progressPrinter writes throttled transfer progress lines.
type progressPrinter struct {
	out      io.Writer
	interval time.Duration
	now      func() time.Time

	mu    sync.Mutex
	last  time.Time
	start time.Time
}

func newProgressPrinter(out io.Writer) *progressPrinter {
	return &progressPrinter{out: out, interval: ProgressInterval, now: time.Now}
}

// Report satisfies model.ProgressFunc.
func (p *progressPrinter) Report(pr model.Progress) {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.now()
	if p.start.IsZero() {
		p.start = now
	}
	done := pr.BytesTotal > 0 && pr.BytesDone >= pr.BytesTotal
	if !done && now.Sub(p.last) < p.interval {
		return
	}
	p.last = now

	if pr.BytesTotal > 0 {
		_, _ = fmt.Fprintf(p.out, "  %s / %s (%.1f%%) %s\n",
			formatBytes(pr.BytesDone), formatBytes(pr.BytesTotal), pr.Fraction*100,
			formatSpeed(pr.BytesDone, now.Sub(p.start)))
		return
	}
	_, _ = fmt.Fprintf(p.out, "  %s %s\n", formatBytes(pr.BytesDone), formatSpeed(pr.BytesDone, now.Sub(p.start)))
}

func formatSpeed(bytes int64, elapsed time.Duration) string {
	if elapsed <= 0 {
		return ""
	}
	return formatBytes(int64(float64(bytes)/elapsed.Seconds())) + "/s"
}

func formatBytes(b int64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
		TB = GB * 1024
	)

	switch {
	case b >= TB:
		return fmt.Sprintf("%.2f TB", float64(b)/float64(TB))
	case b >= GB:
		return fmt.Sprintf("%.2f GB", float64(b)/float64(GB))
	case b >= MB:
		return fmt.Sprintf("%.2f MB", float64(b)/float64(MB))
	case b >= KB:
		return fmt.Sprintf("%.2f KB", float64(b)/float64(KB))
	default:
		return fmt.Sprintf("%d B", b)
	}
}
