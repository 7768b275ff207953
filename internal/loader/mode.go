package loader

import "fmt"

// Mode selects how a load run treats existing data.
type Mode string

const (
	// ModeAppend leaves existing rows in place; duplicates are skipped by
	// the store's insert-if-absent semantics.
	ModeAppend Mode = "append"

	// ModeOverwrite clears all three tables before ingesting.
	ModeOverwrite Mode = "overwrite"
)

func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeAppend:
		return ModeAppend, nil
	case ModeOverwrite:
		return ModeOverwrite, nil
	}
	return "", fmt.Errorf("invalid mode %q (want %q or %q)", s, ModeAppend, ModeOverwrite)
}
