package outwriter

import (
	"os"

	"github.com/huangsam/healthtab/internal/contract"
	"golang.org/x/term"
)

// getMaxCellWidth calculates the maximum width of one cell in table output
// based on terminal width and the number of columns.
func getMaxCellWidth(cfg *contract.Config, columns int) int {
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

	if columns < 1 {
		columns = 1
	}

	// Each column costs a separator plus one space of padding on both sides
	available := (termWidth - (3*columns + 1)) / columns
	if available < 8 {
		return 8
	}
	if available > 40 {
		return 40
	}
	return available
}
