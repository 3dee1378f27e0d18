package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"rfpoker-export/server/compiler"
	"rfpoker-export/server/sidebetz"
)

type Config struct {
	DatabaseURL string
	Port        string
	AutoMigrate bool

	TournamentID    string
	ExportFile      string
	StreetAuthority string
	DealerSubjects  []string
	HandBonus       int

	Sidebetz sidebetz.Config
}

// FromEnv reads the process environment. Unset or malformed values fall back
// to their defaults.
func FromEnv() Config {
	return Config{
		DatabaseURL: Getenv("DATABASE_URL", ""),
		Port:        Getenv("PORT", "8080"),
		AutoMigrate: AsBool(os.Getenv("AUTO_MIGRATE")),

		TournamentID:    os.Getenv("TOURNAMENT_ID"),
		ExportFile:      Getenv("EXPORT_FILE", "rfpoker.json"),
		StreetAuthority: Getenv("STREET_AUTHORITY", compiler.DefaultStreetAuthority),
		DealerSubjects:  splitList(Getenv("DEALER_SUBJECTS", strings.Join(compiler.DefaultDealerSubjects, ","))),
		HandBonus:       AtoiDef(os.Getenv("HAND_BONUS"), compiler.DefaultBonus),

		Sidebetz: sidebetz.Config{
			Enabled: AsBool(os.Getenv("SIDEBETZ_ENABLED")),
			URL:     Getenv("SIDEBETZ_URL", sidebetz.DefaultURL),
			Timeout: time.Duration(AtoiDef(os.Getenv("SIDEBETZ_TIMEOUT_SECONDS"), 10)) * time.Second,
		},
	}
}

// CompileOptions maps the compiler knobs onto compiler.Options.
func (c Config) CompileOptions() compiler.Options {
	return compiler.Options{
		TournamentID:    c.TournamentID,
		StreetAuthority: c.StreetAuthority,
		DealerSubjects:  c.DealerSubjects,
		Bonus:           c.HandBonus,
	}
}

func MustEnv(keys ...string) {
	for _, k := range keys {
		if os.Getenv(k) == "" {
			log.Fatalf("Missing required env var %s. Put it in .env (dev) or set it on the host (prod).", k)
		}
	}
}

func Getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func AtoiDef(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return def
	}
	return n
}

func AsBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "y", "on":
		return true
	default:
		return false
	}
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
