package executor

import (
	"fmt"
	"io"
)

// WriteReport writes the end of run summary followed by the error log.
func WriteReport(w io.Writer, outcome *Outcome) error {
	lines := []string{
		"------------------------------",
		fmt.Sprintf("Statements run:     %d", outcome.Run),
		fmt.Sprintf("Statements skipped: %d", outcome.Skipped),
		fmt.Sprintf("Statement errors:   %d", outcome.Errors),
	}
	if outcome.Ignored > 0 {
		lines = append(lines, fmt.Sprintf("Ignored failures:   %d", outcome.Ignored))
	}
	lines = append(lines, "------------------------------")

	for _, entry := range outcome.Log {
		lines = append(lines, fmt.Sprintf("Error in file: %s", entry.Script))
		lines = append(lines, fmt.Sprintf("  Statement: %s", entry.Statement))
		if entry.Message != "" {
			lines = append(lines, fmt.Sprintf("  Message:   %s", entry.Message))
		}
	}

	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
