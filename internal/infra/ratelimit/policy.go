package ratelimit

import "time"

// Policy is a named rate-limit tier. Keying strategy decides whether the
// counter key is the authenticated user id or the caller IP.
type Policy struct {
	Name    string
	Limit   int
	Window  time.Duration
	KeyByIP bool
}

var (
	// Standard covers ordinary authenticated CRUD traffic.
	Standard = Policy{Name: "standard", Limit: 60, Window: time.Minute}
	// Sensitive covers admin and firm-management routes.
	Sensitive = Policy{Name: "sensitive", Limit: 10, Window: time.Minute}
	// Auth covers unauthenticated session endpoints; IP-keyed so load is
	// shed before identity resolution is paid for.
	Auth = Policy{Name: "auth", Limit: 10, Window: 5 * time.Minute, KeyByIP: true}
	// Webhook covers provider callbacks (Stripe), which carry no session.
	Webhook = Policy{Name: "webhook", Limit: 120, Window: time.Minute, KeyByIP: true}
	// AI covers analysis and PDF-fill routes backed by metered collaborators.
	AI = Policy{Name: "ai", Limit: 5, Window: time.Minute}
)

func (p Policy) Key(route, subject string) string {
	return "rl:" + p.Name + ":" + route + ":" + subject
}
