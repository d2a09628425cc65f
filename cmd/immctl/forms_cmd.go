package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/rohanbsher/immigration-ai/internal/domain"
)

func runFormsList(args []string) int {
	if len(args) != 0 {
		fmt.Fprintln(os.Stderr, "forms list takes no arguments")
		return 1
	}
	for _, form := range domain.FormTypes() {
		fmt.Println(string(form))
	}
	return 0
}

func runFormsValidate(args []string) int {
	fs := flag.NewFlagSet("forms validate", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var form string
	var data string
	var dataFile string
	fs.StringVar(&form, "form", "", "form type")
	fs.StringVar(&data, "data", "", "field data JSON (object of string values)")
	fs.StringVar(&dataFile, "data-file", "", "field data JSON file")

	if err := fs.Parse(args); err != nil {
		return 1
	}

	formType := domain.FormType(strings.TrimSpace(form))
	if !formType.Valid() {
		fmt.Fprintf(os.Stderr, "unknown form type %q\n", form)
		return 1
	}

	payload := []byte(data)
	if dataFile != "" {
		if data != "" {
			fmt.Fprintln(os.Stderr, "--data and --data-file are mutually exclusive")
			return 1
		}
		raw, err := os.ReadFile(dataFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "read field data: %v\n", err)
			return 1
		}
		payload = raw
	}
	if len(payload) == 0 {
		fmt.Fprintln(os.Stderr, "field data is required (--data or --data-file)")
		return 1
	}

	var fields map[string]string
	if err := json.Unmarshal(payload, &fields); err != nil {
		fmt.Fprintf(os.Stderr, "decode field data: %v\n", err)
		return 1
	}

	var problems []string
	for key, value := range fields {
		if strings.TrimSpace(key) == "" {
			problems = append(problems, "empty field name")
		}
		if strings.TrimSpace(value) == "" {
			problems = append(problems, fmt.Sprintf("field %q has an empty value", key))
		}
	}
	if len(problems) > 0 {
		for _, problem := range problems {
			fmt.Fprintln(os.Stderr, problem)
		}
		return 1
	}

	fmt.Printf("form=%s fields=%d ok\n", formType, len(fields))
	return 0
}
