package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rohanbsher/immigration-ai/internal/infra/pdffill"
)

func runPDFHealth(args []string) int {
	fs := flag.NewFlagSet("pdf health", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var url string
	var secret string
	var timeout time.Duration
	fs.StringVar(&url, "url", os.Getenv("PDF_SERVICE_URL"), "fill service base URL")
	fs.StringVar(&secret, "secret", os.Getenv("PDF_SERVICE_SECRET"), "fill service shared secret")
	fs.DurationVar(&timeout, "timeout", 10*time.Second, "request timeout")

	if err := fs.Parse(args); err != nil {
		return 1
	}

	client, err := pdffill.NewClient(url, secret)
	if err != nil {
		fmt.Fprintf(os.Stderr, "pdf health: %v\n", err)
		return 1
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	forms, err := client.Health(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "pdf health: %v\n", err)
		return 1
	}

	fmt.Printf("status=ok forms=%d\n", len(forms))
	for _, form := range forms {
		fmt.Println(form)
	}
	return 0
}
