package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Default values applied when fields are absent from the config file.
const (
	DefaultAddr          = "0.0.0.0:3000"
	DefaultResourceDir   = "."
	DefaultFetchInterval = 10 * time.Minute
	DefaultMQTTQoS       = 1
)

// Config is the top-level configuration. Fields map 1:1 to
// config.example.yaml.
type Config struct {
	Server  ServerConfig   `yaml:"server"`
	Iridium IridiumConfig  `yaml:"iridium"`
	Cameras []CameraConfig `yaml:"cameras"`
	MQTT    MQTTConfig     `yaml:"mqtt"`
	Fetch   FetchConfig    `yaml:"fetch"`
}

// ServerConfig holds the status server's settings.
type ServerConfig struct {
	// Addr is the host:port the HTTP server listens on.
	Addr string `yaml:"addr"`

	// ResourceDir is the root directory for static web resources, such as
	// templates and javascript files.
	ResourceDir string `yaml:"resource_dir"`

	// ImgURL is the public base URL that serves camera images.
	ImgURL string `yaml:"img_url"`

	// ActiveCamera is the name of the camera shown first on the status
	// page. It must name one of the configured cameras.
	ActiveCamera string `yaml:"active_camera"`
}

// IridiumConfig locates the short-burst-data message store.
type IridiumConfig struct {
	// Dir is the root of the message store, one subdirectory per modem.
	Dir string `yaml:"dir"`

	// IMEIs restricts the heartbeat watcher to these modems. Empty means
	// every modem in the store.
	IMEIs []string `yaml:"imeis"`
}

// CameraConfig describes one remote camera.
type CameraConfig struct {
	// Dir is the directory holding the camera's images.
	Dir string `yaml:"dir"`

	// Name overrides the camera name derived from the directory.
	Name string `yaml:"name"`
}

// MQTTConfig configures heartbeat publication to an MQTT broker. A zero
// value disables publishing.
type MQTTConfig struct {
	// Broker is the broker URL, e.g. tcp://localhost:1883.
	Broker string `yaml:"broker"`

	// Topic is the topic heartbeats are published to.
	Topic string `yaml:"topic"`

	// ClientID identifies this publisher to the broker.
	ClientID string `yaml:"client_id"`

	// QoS is the MQTT quality-of-service level, 0 through 2.
	QoS int `yaml:"qos"`

	// Username is the literal broker username (safe to store in config).
	Username string `yaml:"username"`

	// PasswordEnv is the name of the environment variable that holds the
	// broker password.
	PasswordEnv string `yaml:"password_env"`
}

// Enabled reports whether publishing is configured at all.
func (m MQTTConfig) Enabled() bool { return m.Broker != "" }

// Password returns the broker password resolved from the environment.
func (m MQTTConfig) Password() string {
	if m.PasswordEnv == "" {
		return ""
	}
	return os.Getenv(m.PasswordEnv)
}

// FetchConfig configures the SSH mirror that pulls message files off the
// receiving server. A zero value disables fetching.
type FetchConfig struct {
	// Addr is the receiving server's SSH address (host:port).
	Addr string `yaml:"addr"`

	// User is the SSH user name.
	User string `yaml:"user"`

	// RemoteDir is the message store root on the receiving server.
	RemoteDir string `yaml:"remote_dir"`

	// KeyFile is the path to the SSH private key.
	KeyFile string `yaml:"key_file"`

	// PasswordEnv is the name of the environment variable that holds the
	// SSH password, for servers that do not take keys.
	PasswordEnv string `yaml:"password_env"`

	// Interval is how often the mirror is refreshed.
	Interval time.Duration `yaml:"interval"`
}

// Enabled reports whether fetching is configured at all.
func (f FetchConfig) Enabled() bool { return f.Addr != "" }

// Password returns the SSH password resolved from the environment.
func (f FetchConfig) Password() string {
	if f.PasswordEnv == "" {
		return ""
	}
	return os.Getenv(f.PasswordEnv)
}

// Load reads and parses the YAML config file at path. Missing optional
// fields are filled with sensible defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read file: %w", err)
	}

	cfg := defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

// defaults returns a Config pre-populated with default values.
func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:        DefaultAddr,
			ResourceDir: DefaultResourceDir,
		},
		MQTT: MQTTConfig{
			QoS: DefaultMQTTQoS,
		},
		Fetch: FetchConfig{
			Interval: DefaultFetchInterval,
		},
	}
}

// validate checks required fields and structural constraints.
func validate(cfg *Config) error {
	if cfg.Iridium.Dir == "" {
		return fmt.Errorf("iridium.dir is required")
	}
	names := make(map[string]bool)
	for i, camera := range cfg.Cameras {
		if camera.Dir == "" {
			return fmt.Errorf("cameras[%d]: dir is required", i)
		}
		name := camera.Name
		if name == "" {
			name = cameraNameFromDir(camera.Dir)
		}
		if names[name] {
			return fmt.Errorf("cameras[%d]: duplicate camera name %q", i, name)
		}
		names[name] = true
	}
	if cfg.Server.ActiveCamera != "" && !names[cfg.Server.ActiveCamera] {
		return fmt.Errorf("server.active_camera %q does not name a configured camera",
			cfg.Server.ActiveCamera)
	}
	if cfg.MQTT.Enabled() {
		if cfg.MQTT.Topic == "" {
			return fmt.Errorf("mqtt.topic is required when mqtt.broker is set")
		}
		if cfg.MQTT.QoS < 0 || cfg.MQTT.QoS > 2 {
			return fmt.Errorf("mqtt.qos must be 0, 1, or 2")
		}
	}
	if cfg.Fetch.Enabled() {
		if cfg.Fetch.User == "" {
			return fmt.Errorf("fetch.user is required when fetch.addr is set")
		}
		if cfg.Fetch.RemoteDir == "" {
			return fmt.Errorf("fetch.remote_dir is required when fetch.addr is set")
		}
		if cfg.Fetch.Interval <= 0 {
			return fmt.Errorf("fetch.interval must be positive")
		}
	}
	return nil
}

// cameraNameFromDir mirrors the camera package's default naming.
func cameraNameFromDir(dir string) string {
	return filepath.Base(filepath.Clean(dir))
}
