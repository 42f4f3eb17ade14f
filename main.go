// Package main is the entry point for the qiistat CLI
package main

import (
	"errors"
	"os"

	"github.com/qiita-stats/qiistat/cmd"
	"github.com/qiita-stats/qiistat/internal/output"
)

// version is set at build time via ldflags
var version = "dev"

func main() {
	cmd.SetVersion(version)
	if err := cmd.Execute(); err != nil {
		var cliErr *output.CLIError
		if errors.As(err, &cliErr) {
			printer := output.NewPrinterWithOptions(output.PrinterOptions{
				ColorMode:    output.ColorAuto,
				ConfigColors: true,
			})
			printer.FormatError(cliErr)
			os.Exit(cliErr.ExitCode)
		}
		os.Stderr.WriteString("Error: " + err.Error() + "\n")
		os.Exit(1)
	}
}
