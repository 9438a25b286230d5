package main

import (
	"os"

	"github.com/cwbudde/minify-selectors/cmd/minify-selectors/cmd"
	"github.com/cwbudde/minify-selectors/internal/report"
)

func main() {
	if err := cmd.Execute(); err != nil {
		report.New().Error(err)
		os.Exit(1)
	}
}
