package main

import (
	"fmt"
	"os"
	"path/filepath"
)

func run(args []string) int {
	if len(args) < 2 {
		usage(args)
		return 1
	}

	switch args[1] {
	case "forms":
		if len(args) >= 3 {
			switch args[2] {
			case "list":
				return runFormsList(args[3:])
			case "validate":
				return runFormsValidate(args[3:])
			}
		}
	case "invite":
		if len(args) >= 3 && args[2] == "build" {
			return runInviteBuild(args[3:])
		}
	case "pdf":
		if len(args) >= 3 && args[2] == "health" {
			return runPDFHealth(args[3:])
		}
	}

	usage(args)
	return 1
}

func usage(args []string) {
	name := "immctl"
	if len(args) > 0 && args[0] != "" {
		name = filepath.Base(args[0])
	}
	fmt.Fprintf(os.Stderr, "usage:\n")
	fmt.Fprintf(os.Stderr, "  %s forms list\n", name)
	fmt.Fprintf(os.Stderr, "  %s forms validate --form <type> (--data <json>|--data-file <file>)\n", name)
	fmt.Fprintf(os.Stderr, "  %s invite build --firm <id> --email <email> --role <role> [--invited-by <profile-id>] [--ttl <duration>] [--out <file>]\n", name)
	fmt.Fprintf(os.Stderr, "  %s pdf health [--url <base-url>] [--secret <secret>]\n", name)
}
