// v4
// internal/config/config.go
package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// AppConfig carries everything the process needs at startup. Transport
// addresses come from the environment; tunables come from the
// properties file and can be reloaded while running.
type AppConfig struct {
	HTTPBind       string
	PropertiesPath string
	ProtocolsPath  string

	KafkaBrokers []string
	KafkaTopic   string
	MQTTBroker   string
	MQTTTopic    string
	MQTTClientID string

	Seed     int64
	LogLevel string

	// Reloadable tunables.
	TickIntervalMs     int
	NoiseLevel         float64
	FailureProbability float64
	RushHourEnabled    bool
	WeatherSimulation  bool
}

func LoadEnvAndFiles() (*AppConfig, error) {
	c := &AppConfig{
		HTTPBind:       getenv("HTTP_BIND", ":8000"),
		PropertiesPath: getenv("PROPERTIES_PATH", "./configs/twin.properties"),
		ProtocolsPath:  getenv("PROTOCOLS_PATH", "./configs/protocols.yaml"),
		KafkaBrokers:   split(getenv("KAFKA_BROKERS", ""), ","),
		KafkaTopic:     getenv("KAFKA_TOPIC", "twin.ticks"),
		MQTTBroker:     getenv("MQTT_BROKER", ""),
		MQTTTopic:      getenv("MQTT_TOPIC", "twin/alerts"),
		MQTTClientID:   getenv("MQTT_CLIENT_ID", "urban-twin"),
		Seed:           int64(geti("SEED", 0)),
		LogLevel:       getenv("LOG_LEVEL", "info"),

		TickIntervalMs:     500,
		NoiseLevel:         0.1,
		FailureProbability: 0.001,
		RushHourEnabled:    true,
		WeatherSimulation:  true,
	}
	if err := c.loadProperties(c.PropertiesPath); err != nil {
		// The properties file is optional; defaults stand without it.
		if !os.IsNotExist(err) {
			return nil, err
		}
	}
	return c, nil
}

// ReloadProperties re-reads the tunables from the properties file.
func (c *AppConfig) ReloadProperties() error { return c.loadProperties(c.PropertiesPath) }

func (c *AppConfig) loadProperties(path string) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return err
		}
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	s := bufio.NewScanner(f)
	for s.Scan() {
		line := strings.TrimSpace(s.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "//") {
			continue
		}
		k, v, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		k = strings.TrimSpace(k)
		v = strings.TrimSpace(v)
		switch k {
		case "tick.interval.ms":
			if i, err := strconv.Atoi(v); err == nil && i > 0 {
				c.TickIntervalMs = i
			}
		case "noise.level":
			if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 {
				c.NoiseLevel = f
			}
		case "failure.probability":
			if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 && f <= 1 {
				c.FailureProbability = f
			}
		case "rush.hour.enabled":
			if b, err := strconv.ParseBool(v); err == nil {
				c.RushHourEnabled = b
			}
		case "weather.enabled":
			if b, err := strconv.ParseBool(v); err == nil {
				c.WeatherSimulation = b
			}
		case "protocols.path":
			c.ProtocolsPath = v
		}
	}
	return s.Err()
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func geti(k string, d int) int {
	if v := os.Getenv(k); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return d
}

func split(s, sep string) []string {
	if s == "" {
		return nil
	}
	p := strings.Split(s, sep)
	out := make([]string, 0, len(p))
	for _, x := range p {
		x = strings.TrimSpace(x)
		if x != "" {
			out = append(out, x)
		}
	}
	return out
}
