package config

import (
	"fmt"
	"net"
	"runtime"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// AppConfig holds configuration values parsed from environment variables.
type AppConfig struct {
	// Env is the runtime environment, either "dev" or "prod".
	Env string `koanf:"env" validate:"required,oneof=dev prod"`

	// LogLevel controls log verbosity: "debug", "info", "warn", or "error".
	LogLevel string `koanf:"log_level" validate:"required,oneof=debug info warn error"`

	// HostsPath is the system host-name resolution file.
	HostsPath string `koanf:"hosts_path" validate:"required"`

	// Loopback is the address every blocked host is mapped to.
	Loopback string `koanf:"loopback" validate:"required,loopback_ip"`

	// FlushCommand and FlushFlag form the resolver cache flush invocation.
	FlushCommand string `koanf:"flush_command" validate:"required"`
	FlushFlag    string `koanf:"flush_flag" validate:"required"`

	// MinMinutes is the smallest timer accepted. Zero allows immediate no-wait sessions.
	MinMinutes uint `koanf:"min_minutes" validate:"lte=1440"`

	// AtomicWrite replaces the host file through a temporary file and rename
	// instead of writing it in place.
	AtomicWrite bool `koanf:"atomic_write"`

	// MarkEntries tags appended lines with a comment so a later apply replaces
	// them instead of appending duplicates.
	MarkEntries bool `koanf:"mark_entries"`

	// Journal is the bbolt file that records session snapshots. Empty disables it.
	Journal string `koanf:"journal"`
}

// DEFAULT_APP_CONFIG holds the defaults for the platform the binary runs on.
var DEFAULT_APP_CONFIG = defaultsFor(runtime.GOOS)

// defaultsFor returns the default configuration for goos. Host file location
// and flush command are the only platform dependent values.
func defaultsFor(goos string) AppConfig {
	cfg := AppConfig{
		Env:          "dev",
		LogLevel:     "info",
		HostsPath:    "/etc/hosts",
		Loopback:     "127.0.0.1",
		FlushCommand: "resolvectl",
		FlushFlag:    "flush-caches",
		MinMinutes:   1,
		AtomicWrite:  false,
		MarkEntries:  false,
		Journal:      "/var/lib/focus/journal.db",
	}
	switch goos {
	case "darwin":
		cfg.FlushCommand = "dscacheutil"
		cfg.FlushFlag = "-flushcache"
	case "windows":
		cfg.HostsPath = `C:\Windows\System32\drivers\etc\hosts`
		cfg.FlushCommand = "ipconfig"
		cfg.FlushFlag = "/flushdns"
		cfg.Journal = `C:\ProgramData\focus\journal.db`
	}
	return cfg
}

// validLoopbackIP accepts loopback addresses and the unspecified address
// (0.0.0.0, ::), both of which make a host unreachable.
func validLoopbackIP(fl validator.FieldLevel) bool {
	ip := net.ParseIP(fl.Field().String())
	if ip == nil {
		return false
	}
	return ip.IsLoopback() || ip.IsUnspecified()
}

// envLoader loads environment variables with the prefix "FOCUS_",
// lowercasing keys and dropping the prefix. It can be replaced in tests.
var envLoader = func(k *koanf.Koanf) error {
	return k.Load(env.Provider(".", env.Opt{
		Prefix: "FOCUS_",
		TransformFunc: func(key, value string) (string, any) {
			key = strings.ToLower(strings.TrimPrefix(key, "FOCUS_"))
			return key, strings.TrimSpace(value)
		},
	}), nil)
}

// defaultLoader loads DEFAULT_APP_CONFIG through the structs provider.
var defaultLoader = func(k *koanf.Koanf) error {
	return k.Load(structs.Provider(DEFAULT_APP_CONFIG, "koanf"), nil)
}

// registerValidation registers the custom "loopback_ip" tag.
var registerValidation = func(v *validator.Validate) error {
	return v.RegisterValidation("loopback_ip", validLoopbackIP)
}

// Load merges defaults with the environment and validates the result.
func Load() (*AppConfig, error) {
	k := koanf.New(".")

	err := defaultLoader(k)
	if err != nil {
		return nil, fmt.Errorf("error loading default config: %w", err)
	}

	err = envLoader(k)
	if err != nil {
		return nil, fmt.Errorf("error loading env: %w", err)
	}

	var cfg AppConfig
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	err = registerValidation(validate)
	if err != nil {
		return nil, fmt.Errorf("error registering validation: %w", err)
	}

	err = validate.Struct(&cfg)
	if err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	return &cfg, nil
}
