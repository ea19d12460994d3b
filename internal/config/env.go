package config

import (
	"os"

	"github.com/joho/godotenv"
)

// envFiles are loaded in order; values already in the environment win.
var envFiles = []string{".env", ".env.local"}

// LoadEnv loads the .env files that exist. It never overrides variables that
// are already set.
func LoadEnv() {
	var present []string
	for _, name := range envFiles {
		if _, err := os.Stat(name); err == nil {
			present = append(present, name)
		}
	}
	if len(present) > 0 {
		_ = godotenv.Load(present...)
	}
}
