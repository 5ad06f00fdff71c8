package outwriter

import (
	"os"

	"github.com/huangsam/codetrend/internal/contract"
	"golang.org/x/term"
)

// GetMaxTablePathWidth calculates the maximum width for paths in table output
// based on terminal width and the number of other columns.
func GetMaxTablePathWidth(cfg *contract.Config, otherColumns int) int {
	var termWidth int

	// Check for absolute width override from flag/env
	if cfg.Width > 0 {
		termWidth = cfg.Width
	}

	if termWidth == 0 { // Not set by override
		detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil || detectedWidth <= 0 {
			termWidth = 80 // Conservative default for narrow terminals and CI
		} else {
			termWidth = detectedWidth
		}
	}

	// Each value column takes about 15 cells with borders and padding
	baseWidth := 15*otherColumns + 10

	available := termWidth - baseWidth
	if available < 15 {
		return 15
	}
	if available > 70 {
		return 70
	}
	return available
}
