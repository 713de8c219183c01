package utils

import (
	"fmt"
	"os"

	"golang.org/x/crypto/ssh/terminal"
)

func InRed(str string) string {
	return fmt.Sprintf("\x1b[31;1m%s\x1b[0m", str)
}

func InGreen(str string) string {
	return fmt.Sprintf("\x1b[32;1m%s\x1b[0m", str)
}

// StatusLabels returns the words for a passed and a failed check,
// coloured when stdout is a terminal.
func StatusLabels() (passed string, failed string) {
	passed, failed = "Passed", "Failed"
	if terminal.IsTerminal(int(os.Stdout.Fd())) {
		passed = InGreen(passed)
		failed = InRed(failed)
	}
	return passed, failed
}
