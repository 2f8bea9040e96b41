package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"credit_valuation/pkg/core/logger"
	"credit_valuation/pkg/core/report"
	"credit_valuation/pkg/core/utils"
	"credit_valuation/pkg/core/valuation"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("calc-engine", flag.ContinueOnError)
	fs.SetOutput(stderr)
	mode := fs.String("mode", "calculate", "Mode: check or calculate")
	method := fs.String("method", valuation.MethodDCF, "Method: dcf or multiples")
	dataStr := fs.String("data", "", "JSON or Hjson payload")
	file := fs.String("file", "", "Read the payload from a file instead of -data")
	format := fs.String("format", "json", "Output: json, md or html")
	title := fs.String("title", "Valuation report", "Report title for md/html output")
	logLevel := fs.String("log-level", "warn", "Log level")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *mode != "calculate" && *mode != "check" {
		fmt.Fprintf(stderr, "Unknown mode: %s\n", *mode)
		return 2
	}

	log, err := logger.New(*logLevel, "console")
	if err != nil {
		fmt.Fprintf(stderr, "Error: logger: %v\n", err)
		return 1
	}
	defer log.Sync()

	payload := []byte(*dataStr)
	if *file != "" {
		payload, err = os.ReadFile(*file)
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
	}
	if len(payload) == 0 {
		fmt.Fprintln(stderr, "Error: No data provided")
		return 1
	}

	var (
		result interface{}
		render func() string
	)
	switch *method {
	case valuation.MethodDCF:
		var raw valuation.RawDCFInput
		if err := utils.DecodeLenient(payload, &raw); err != nil {
			fmt.Fprintf(stderr, "Error unmarshaling data: %v\n", err)
			return 1
		}
		if *mode == "check" {
			_, err := valuation.ValidateDCF(raw)
			return reportCheck(err, stdout, stderr)
		}
		res, err := valuation.CalculateDCF(raw)
		if err != nil {
			return reportCalcError(log, err, stderr)
		}
		result = res
		render = func() string { return report.DCFMarkdown(*title, res) }
	case valuation.MethodMultiples:
		var raw valuation.RawMultiplesInput
		if err := utils.DecodeLenient(payload, &raw); err != nil {
			fmt.Fprintf(stderr, "Error unmarshaling data: %v\n", err)
			return 1
		}
		if *mode == "check" {
			_, err := valuation.ValidateMultiples(raw)
			return reportCheck(err, stdout, stderr)
		}
		res, err := valuation.CalculateMultiples(raw)
		if err != nil {
			return reportCalcError(log, err, stderr)
		}
		result = res
		render = func() string { return report.MultiplesMarkdown(*title, res) }
	default:
		fmt.Fprintf(stderr, "Unknown method: %s\n", *method)
		return 2
	}

	log.Debug("valuation calculated", zap.String("method", *method))

	switch *format {
	case "md":
		fmt.Fprint(stdout, render())
	case "html":
		html, err := report.HTML(render())
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
		fmt.Fprint(stdout, html)
	default:
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
	}
	return 0
}

func reportCheck(err error, stdout, stderr io.Writer) int {
	if err == nil {
		fmt.Fprintln(stdout, "Success: input is valid")
		return 0
	}
	var vErr *valuation.ValidationError
	if errors.As(err, &vErr) {
		for _, v := range vErr.Violations {
			fmt.Fprintf(stdout, "Error: %s: %s\n", v.Field, v.Message)
		}
		return 3
	}
	fmt.Fprintf(stderr, "Error: %v\n", err)
	return 1
}

func reportCalcError(log *zap.Logger, err error, stderr io.Writer) int {
	log.Debug("valuation failed", zap.Error(err))
	var vErr *valuation.ValidationError
	if errors.As(err, &vErr) {
		for _, v := range vErr.Violations {
			fmt.Fprintf(stderr, "Error: %s: %s\n", v.Field, v.Message)
		}
		return 3
	}
	fmt.Fprintf(stderr, "Error: %v\n", err)
	if errors.Is(err, valuation.ErrDomain) {
		return 4
	}
	return 1
}
