package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/zalepa/fcaschools/internal/logger"
)

// reorderArgs moves positional arguments to the end so that Go's flag package
// can parse all flags regardless of where a positional workbook argument
// appears.
func reorderArgs(args []string) []string {
	var flags, positional []string
	for i := 0; i < len(args); i++ {
		if args[i] == "--" {
			positional = append(positional, args[i+1:]...)
			break
		}
		if strings.HasPrefix(args[i], "-") {
			flags = append(flags, args[i])
			// Consume the next arg as the flag's value unless it looks like a flag itself.
			if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") && !strings.Contains(args[i], "=") {
				flags = append(flags, args[i+1])
				i++
			}
		} else {
			positional = append(positional, args[i])
		}
	}
	return append(flags, positional...)
}

// fail reports err and exits.
func fail(what string, err error) {
	logger.Debug("%s: %+v", what, err)
	fmt.Fprintf(os.Stderr, "error %s: %v\n", what, err)
	os.Exit(1)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
