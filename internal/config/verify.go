package config

import (
	"os"
	"strings"
)

// EnvCheck is one line of the verify-env report.
type EnvCheck struct {
	Name    string
	Present bool
	Problem string
}

func (c EnvCheck) OK() bool {
	return c.Present && c.Problem == ""
}

// RequiredEnv lists the variables a deployment must set explicitly. The
// defaults in New only suit a local docker-compose stack.
var RequiredEnv = []string{
	"POSTGRES_HOST",
	"POSTGRES_DB",
	"POSTGRES_USER",
	"POSTGRES_PASSWORD",
	"MINIO_ENDPOINT",
	"MINIO_ACCESS_KEY",
	"MINIO_SECRET_KEY",
	"REDIS_HOST",
	"JWT_SECRET",
	"ADMIN_USERNAME",
}

var placeholderMarkers = []string{"your_", "change-me", "change-this"}

func checkEnv(name string) EnvCheck {
	value := strings.TrimSpace(os.Getenv(name))
	check := EnvCheck{Name: name, Present: value != ""}
	if !check.Present {
		check.Problem = "missing"
		return check
	}
	lower := strings.ToLower(value)
	for _, marker := range placeholderMarkers {
		if strings.Contains(lower, marker) {
			check.Problem = "still has placeholder value"
			break
		}
	}
	return check
}

// VerifyEnv checks every required variable plus the admin password, which may
// be given either as ADMIN_PASSWORD_HASH or ADMIN_PASSWORD.
func VerifyEnv() []EnvCheck {
	checks := make([]EnvCheck, 0, len(RequiredEnv)+1)
	for _, name := range RequiredEnv {
		checks = append(checks, checkEnv(name))
	}

	password := checkEnv("ADMIN_PASSWORD_HASH")
	if !password.Present {
		password = checkEnv("ADMIN_PASSWORD")
	}
	checks = append(checks, password)

	if secret := os.Getenv("JWT_SECRET"); secret != "" && len(secret) < 32 {
		for i := range checks {
			if checks[i].Name == "JWT_SECRET" && checks[i].Problem == "" {
				checks[i].Problem = "shorter than 32 characters"
			}
		}
	}
	return checks
}
