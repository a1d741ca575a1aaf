// Package config binds the dump subcommand's tunables through viper and
// pflag, following conneroisu-templar's cmd/root.go precedence (flag > env
// > file > default) trimmed to what SPEC_FULL.md §A.4 actually needs.
package config

import (
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "RESOURCER"

// Dump holds the dump subcommand's tunables, defaulting to the values
// spec.md §4.1/§4.3 name: 30s timeout, 3 attempts, concurrency 8. The
// 200ms backoff base is not a field here; it is fixed in the fetch layer.
type Dump struct {
	Concurrency   int
	RetryAttempts int
	Timeout       time.Duration
	UserAgent     string
	MaxFiles      int
	OutDir        string
	DryRun        bool
	Proxy         string
	InsecureTLS   bool
	Beautify      bool
	EOL           string
}

// DefaultDump returns the spec-mandated defaults before any flag/env/file
// override is applied.
func DefaultDump() Dump {
	return Dump{
		Concurrency:   8,
		RetryAttempts: 3,
		Timeout:       30 * time.Second,
		MaxFiles:      0,
		OutDir:        "out",
		EOL:           "lf",
	}
}

// BindDumpFlags registers the dump subcommand's flags on fs and binds each
// to viper under the dump.* keys, so that environment
// variables (RESOURCER_DUMP_CONCURRENCY, ...) and an optional config file
// can supply defaults a flag does not override.
func BindDumpFlags(fs *pflag.FlagSet, defaults Dump) {
	fs.Int("concurrency", defaults.Concurrency, "number of concurrent downloads")
	fs.Int("max-files", defaults.MaxFiles, "maximum number of chunk files to process (0 = unlimited)")
	fs.String("out", defaults.OutDir, "output directory")
	fs.Bool("dry-run", defaults.DryRun, "print discovered chunk urls without downloading")
	fs.String("proxy", defaults.Proxy, "HTTP/HTTPS proxy URL for outbound requests")
	fs.Bool("insecure-skip-verify", defaults.InsecureTLS, "disable TLS certificate verification")
	fs.Bool("beautify", defaults.Beautify, "apply minimal non-destructive reformatting to recovered sources")
	fs.String("eol", defaults.EOL, "line-ending normalization for recovered sources: lf, crlf, or none")
	fs.String("user-agent", defaults.UserAgent, "user agent sent with outbound requests (default: fetch layer's built-in desktop UA)")

	_ = viper.BindPFlag("dump.concurrency", fs.Lookup("concurrency"))
	_ = viper.BindPFlag("dump.max_files", fs.Lookup("max-files"))
	_ = viper.BindPFlag("dump.out", fs.Lookup("out"))
	_ = viper.BindPFlag("dump.dry_run", fs.Lookup("dry-run"))
	_ = viper.BindPFlag("dump.proxy", fs.Lookup("proxy"))
	_ = viper.BindPFlag("dump.insecure_skip_verify", fs.Lookup("insecure-skip-verify"))
	_ = viper.BindPFlag("dump.beautify", fs.Lookup("beautify"))
	_ = viper.BindPFlag("dump.eol", fs.Lookup("eol"))
	_ = viper.BindPFlag("dump.user_agent", fs.Lookup("user-agent"))
}

// Init wires viper's config-file and environment-variable sources, mirroring
// conneroisu-templar's initConfig: an explicit --config path wins, then
// RESOURCER_CONFIG_FILE, then a discovered .resourcer.yaml in the working
// directory. A missing or malformed file is not fatal; defaults and flags
// still apply.
func Init(explicitPath string) {
	if explicitPath == "" {
		explicitPath = os.Getenv(envPrefix + "_CONFIG_FILE")
	}
	if explicitPath != "" {
		viper.SetConfigFile(explicitPath)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".resourcer")
	}

	viper.SetEnvPrefix(envPrefix)
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	_ = viper.ReadInConfig()
}

// ResolveDump reads the bound dump.* keys back out of viper into a Dump
// struct, reflecting flag > env > file > default precedence.
func ResolveDump() Dump {
	return Dump{
		Concurrency:   viper.GetInt("dump.concurrency"),
		RetryAttempts: DefaultDump().RetryAttempts,
		Timeout:       DefaultDump().Timeout,
		UserAgent:     viper.GetString("dump.user_agent"),
		MaxFiles:      viper.GetInt("dump.max_files"),
		OutDir:        viper.GetString("dump.out"),
		DryRun:        viper.GetBool("dump.dry_run"),
		Proxy:         viper.GetString("dump.proxy"),
		InsecureTLS:   viper.GetBool("dump.insecure_skip_verify"),
		Beautify:      viper.GetBool("dump.beautify"),
		EOL:           viper.GetString("dump.eol"),
	}
}
