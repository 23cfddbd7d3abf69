// Package config loads board configuration from an optional YAML file,
// layered over defaults, with environment overrides for deployment knobs.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all lethe configuration.
type Config struct {
	// Address the HTTP server listens on.
	Listen string `yaml:"listen"`

	// Path to the SQLite database file.
	DBPath string `yaml:"db_path"`

	// Secret accepted by /login to grant deletion rights.
	Secret string `yaml:"secret"`

	// Seeded into an empty board by `lethe init`.
	FirstMessage string `yaml:"first_message"`

	// Maximum characters (runes) per memory.
	MaxCharacters int `yaml:"max_characters"`

	// Board capacity; the oldest memory is evicted to stay within it.
	Capacity int `yaml:"capacity"`

	// Directory of images served by /random_image.
	RandomImageDir string `yaml:"random_image_dir"`

	// Placeholder text for the submission input.
	Placeholder string `yaml:"placeholder"`

	Messages MessagesConfig `yaml:"messages"`
	Thumb    ThumbConfig    `yaml:"thumb"`
	Danbooru DanbooruConfig `yaml:"danbooru"`
}

// MessagesConfig is the user-visible string table.
type MessagesConfig struct {
	Greet        string `yaml:"greet"`
	Goodbye      string `yaml:"goodbye"`
	LoginFail    string `yaml:"login_fail"`
	TooShort     string `yaml:"too_short"`
	TooLong      string `yaml:"too_long"`
	Unoriginal   string `yaml:"unoriginal"`
	InvalidSlash string `yaml:"invalid_slash"`
	NoMatches    string `yaml:"no_matches"`
	Unavailable  string `yaml:"unavailable"`
}

// ThumbConfig bounds derived thumbnails. Images are scaled to fit inside
// MaxWidth x MaxHeight and re-encoded as JPEG at a random quality between
// MinQuality and MaxQuality.
type ThumbConfig struct {
	MaxWidth   int `yaml:"max_width"`
	MaxHeight  int `yaml:"max_height"`
	MinQuality int `yaml:"min_quality"`
	MaxQuality int `yaml:"max_quality"`

	// Seconds before an image fetch or existence check is abandoned.
	TimeoutSeconds int `yaml:"timeout_seconds"`
}

// DanbooruConfig configures the external tag-search command.
type DanbooruConfig struct {
	Endpoint string `yaml:"endpoint"`
	Limit    int    `yaml:"limit"`

	// When true, a transport or parse failure from the search endpoint is
	// answered with a plain 400 instead of surfacing as a server fault.
	Lenient bool `yaml:"lenient"`

	TimeoutSeconds int `yaml:"timeout_seconds"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Listen:         ":5000",
		DBPath:         "lethe.db",
		Secret:         "lain",
		FirstMessage:   "scream into the void",
		MaxCharacters:  140,
		Capacity:       10,
		RandomImageDir: "static/backgrounds",
		Placeholder:    "tell me a memory",
		Messages: MessagesConfig{
			Greet:        "Make everyone forget",
			Goodbye:      "Memory is your mistress.",
			LoginFail:    "I don't think so.",
			TooShort:     "Too short!",
			TooLong:      "Too long!",
			Unoriginal:   "Unoriginal!",
			InvalidSlash: "Invalid Slash Command",
			NoMatches:    "No matches!",
			Unavailable:  "Search unavailable!",
		},
		Thumb: ThumbConfig{
			MaxWidth:       360,
			MaxHeight:      360,
			MinQuality:     5,
			MaxQuality:     20,
			TimeoutSeconds: 10,
		},
		Danbooru: DanbooruConfig{
			Endpoint:       "https://danbooru.donmai.us/posts.json",
			Limit:          10,
			Lenient:        false,
			TimeoutSeconds: 10,
		},
	}
}

// Load reads the config file at path (if path is empty or the file does
// not exist, defaults are used), then applies environment overrides.
// A .env file in the working directory is honored if present.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return cfg, fmt.Errorf("read config: %w", err)
			}
		} else if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
	}

	// Best effort; absence of a .env file is normal.
	godotenv.Load()
	applyEnv(&cfg)

	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("LETHE_LISTEN"); v != "" {
		cfg.Listen = v
	}
	if v := os.Getenv("LETHE_DB"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("LETHE_SECRET"); v != "" {
		cfg.Secret = v
	}
	if v := os.Getenv("LETHE_CAPACITY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Capacity = n
		}
	}
	if v := os.Getenv("LETHE_MAX_CHARACTERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxCharacters = n
		}
	}
}

func (c Config) validate() error {
	if c.Capacity <= 0 {
		return fmt.Errorf("capacity must be positive, got %d", c.Capacity)
	}
	if c.MaxCharacters <= 0 {
		return fmt.Errorf("max_characters must be positive, got %d", c.MaxCharacters)
	}
	if c.Thumb.MinQuality < 1 || c.Thumb.MaxQuality > 100 || c.Thumb.MinQuality > c.Thumb.MaxQuality {
		return fmt.Errorf("thumb quality range %d..%d is invalid", c.Thumb.MinQuality, c.Thumb.MaxQuality)
	}
	return nil
}
