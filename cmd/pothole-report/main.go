package main

import (
	"os"

	"github.com/cyclekit/pothole-report/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
