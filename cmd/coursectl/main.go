package main

import (
	"fmt"
	"os"

	"github.com/jrsteele09/course-session-gateway/cmd/coursectl/commands"
)

func main() {
	if err := commands.NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
