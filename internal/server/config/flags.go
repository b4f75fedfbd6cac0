package config

import (
	"flag"
	"os"
	"time"

	"github.com/fairmanage/tenantportal/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-d string   PostgreSQL DSN
//	-s string   JWT HMAC secret key
//	-t int      session token validity, minutes
//	-e int      setup token validity, hours
//	-l int      minimum password length, runes
//	-a string   active group name
//	-f string   fallback group name
//	-m string   main portal URL
//
// Notes:
//   - The function first filters os.Args to only the flags it recognizes using
//     flagx.FilterArgs, avoiding collisions with other components.
//   - Duration flags are accepted as integers and then converted to
//     time.Duration values.
func parseFlags(config *Config) {
	// Filter args to include only the flags handled here.
	args := flagx.FilterArgs(os.Args[1:], []string{"-d", "-s", "-t", "-e", "-l", "-a", "-f", "-m"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	sessionTokenValidityDuration := fs.Int("t", int(config.SessionTokenValidityDuration.Minutes()), "session_token_validity_duration (in minutes)")
	setupTokenValidityDuration := fs.Int("e", int(config.SetupTokenValidityDuration.Hours()), "setup_token_validity_duration (in hours)")

	fs.IntVar(&config.MinPasswordLength, "l", config.MinPasswordLength, "minimum password length")
	fs.StringVar(&config.ActiveGroupName, "a", config.ActiveGroupName, "active group name")
	fs.StringVar(&config.FallbackGroupName, "f", config.FallbackGroupName, "fallback group name")
	fs.StringVar(&config.MainPortalURL, "m", config.MainPortalURL, "main portal URL")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.SessionTokenValidityDuration = time.Duration(*sessionTokenValidityDuration) * time.Minute
	config.SetupTokenValidityDuration = time.Duration(*setupTokenValidityDuration) * time.Hour
}
