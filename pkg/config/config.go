package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DefaultPath is the config file looked up when no --config flag is given.
const DefaultPath = ".beelot-tooling.yaml"

type Project struct {
	RootName    string `mapstructure:"root_name"`
	VersionJS   string `mapstructure:"version_js"`
	PackageJSON string `mapstructure:"package_json"`
}

type Git struct {
	Remote     string `mapstructure:"remote"`
	MainBranch string `mapstructure:"main_branch"`
	DevBranch  string `mapstructure:"dev_branch"`
}

type GitHub struct {
	// Repository is "owner/name". Empty disables release publishing.
	Repository string `mapstructure:"repository"`
	Token      string `mapstructure:"token"`
}

type Release struct {
	SyncCommand []string `mapstructure:"sync_command"`
	GitHub      GitHub   `mapstructure:"github"`
}

type URLCheck struct {
	Timeout        time.Duration `mapstructure:"timeout"`
	Delay          time.Duration `mapstructure:"delay"`
	Marker         string        `mapstructure:"marker"`
	UserAgent      string        `mapstructure:"user_agent"`
	AcceptLanguage string        `mapstructure:"accept_language"`
}

type Log struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

type Config struct {
	Project  Project  `mapstructure:"project"`
	Git      Git      `mapstructure:"git"`
	Release  Release  `mapstructure:"release"`
	URLCheck URLCheck `mapstructure:"urlcheck"`
	Log      Log      `mapstructure:"log"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("project.root_name", "beelot")
	v.SetDefault("project.version_js", "assets/js/version.js")
	v.SetDefault("project.package_json", "package.json")

	v.SetDefault("git.remote", "origin")
	v.SetDefault("git.main_branch", "main")
	v.SetDefault("git.dev_branch", "dev")

	v.SetDefault("release.sync_command", []string{"sync-versions", "--source", "version-js"})
	v.SetDefault("release.github.repository", "")
	v.SetDefault("release.github.token", "")

	v.SetDefault("urlcheck.timeout", 15*time.Second)
	v.SetDefault("urlcheck.delay", 300*time.Millisecond)
	v.SetDefault("urlcheck.marker", "Error404")
	v.SetDefault("urlcheck.user_agent",
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	v.SetDefault("urlcheck.accept_language", "de-DE,de;q=0.9,en;q=0.8")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", true)
}

// Load reads configPath when it exists, then applies BEELOT_* environment overrides.
// A missing file at DefaultPath is not an error; a missing explicit file is.
func Load(configPath string) (*Config, error) {
	// .env is optional.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("BEELOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			if !(configPath == DefaultPath && errors.Is(err, fs.ErrNotExist)) {
				return nil, fmt.Errorf("failed to read config %s: %w", configPath, err)
			}
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if config.Release.GitHub.Token == "" {
		config.Release.GitHub.Token = v.GetString("github_token")
	}

	return &config, nil
}
