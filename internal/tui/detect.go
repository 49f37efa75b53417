package tui

import (
	"os"

	"golang.org/x/term"
)

// Mode represents the output mode for pgfetch.
type Mode int

const (
	// ModePlain is used for CI/CD pipelines, scripts, and piped output.
	ModePlain Mode = iota
	// ModeStyled is used when a human is at the terminal.
	ModeStyled
)

// DetectMode determines whether pgfetch should render styled output.
//
// Returns ModePlain if:
//   - stdout is not a terminal (piped output, CI/CD)
//   - PGFETCH_PLAIN=1 is set
//   - CI=true is set (common CI/CD convention)
//   - NO_COLOR is set (accessibility/automation indicator)
//
// Returns ModeStyled otherwise.
func DetectMode() Mode {
	if os.Getenv("PGFETCH_PLAIN") == "1" {
		return ModePlain
	}
	if os.Getenv("CI") != "" {
		return ModePlain
	}
	if os.Getenv("NO_COLOR") != "" {
		return ModePlain
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return ModePlain
	}

	return ModeStyled
}

// IsStyled is a convenience function that returns true when styled output is appropriate.
func IsStyled() bool {
	return DetectMode() == ModeStyled
}
