package cli

import "time"

// Default values for CLI flags and formatted output.
const (
	// TabWidth is the width of tabs in formatted output.
	TabWidth = 2
	// ProgressInterval throttles progress lines.
	ProgressInterval = 500 * time.Millisecond
)
