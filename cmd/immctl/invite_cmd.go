package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"

	"github.com/rohanbsher/immigration-ai/internal/domain"
)

// runInviteBuild mints an invitation row offline for operators seeding a
// firm before the API is reachable. The printed JSON matches the table
// shape, so it can be inserted directly.
func runInviteBuild(args []string) int {
	fs := flag.NewFlagSet("invite build", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var firmID string
	var email string
	var role string
	var invitedBy string
	var ttl time.Duration
	var outPath string
	fs.StringVar(&firmID, "firm", "", "firm id")
	fs.StringVar(&email, "email", "", "invitee email")
	fs.StringVar(&role, "role", "", "role granted on acceptance")
	fs.StringVar(&invitedBy, "invited-by", "", "inviting profile id")
	fs.DurationVar(&ttl, "ttl", 7*24*time.Hour, "invitation lifetime")
	fs.StringVar(&outPath, "out", "", "output file (default stdout)")

	if err := fs.Parse(args); err != nil {
		return 1
	}

	if firmID == "" || email == "" {
		fmt.Fprintln(os.Stderr, "--firm and --email are required")
		return 1
	}
	parsedRole, err := domain.ParseRole(role)
	if err != nil {
		fmt.Fprintf(os.Stderr, "parse role: %v\n", err)
		return 1
	}
	if parsedRole == domain.RoleAdmin {
		fmt.Fprintln(os.Stderr, "admin cannot be granted by invitation")
		return 1
	}
	if ttl <= 0 {
		fmt.Fprintln(os.Stderr, "--ttl must be positive")
		return 1
	}

	now := time.Now().UTC()
	invite := domain.Invitation{
		ID:        uuid.NewString(),
		FirmID:    firmID,
		Email:     strings.ToLower(strings.TrimSpace(email)),
		Role:      parsedRole,
		Token:     ulid.Make().String(),
		InvitedBy: invitedBy,
		Status:    domain.InviteOpen,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}

	payload, err := json.MarshalIndent(invite, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "encode invitation: %v\n", err)
		return 1
	}
	if err := writeOutput(outPath, payload); err != nil {
		fmt.Fprintf(os.Stderr, "write invitation: %v\n", err)
		return 1
	}
	return 0
}
