package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	EnvDuration       string = "PROBE_DURATION"
	EnvReportInterval string = "PROBE_REPORT_INTERVAL"
	EnvReportPath     string = "PROBE_REPORT_PATH"
	EnvDialTimeout    string = "PROBE_DIAL_TIMEOUT"
	EnvWriteDeadline  string = "PROBE_WRITE_DEADLINE"
	EnvQueueLength    string = "PROBE_QUEUE_LENGTH"
	EnvDebug          string = "PROBE_DEBUG"
)

const (
	defaultEnvFile string = ".env"
)

// LoadEnv overlays PROBE_* variables onto c. Variables are read from the
// process environment after loading path, or ./.env when path is empty.
// A missing default .env is not an error, a missing explicit path is.
func LoadEnv(path string, c *Config) error {
	if path == "" {
		err := godotenv.Load(defaultEnvFile)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			log.Printf("%s: failed to load %s, err=%s", c.LogPrefix, defaultEnvFile, err.Error())
		}
	} else {
		err := godotenv.Load(path)
		if err != nil {
			err = fmt.Errorf("%s: failed to load env file %s, err=%w", c.LogPrefix, path, err)
			log.Printf("%s", err.Error())
			return err
		}
	}

	if err := loadEnvDuration(&c.Duration, EnvDuration); err != nil {
		return err
	}
	if err := loadEnvDuration(&c.ReportInterval, EnvReportInterval); err != nil {
		return err
	}
	if err := loadEnvDuration(&c.TcpDialTimeout, EnvDialTimeout); err != nil {
		return err
	}
	if err := loadEnvDuration(&c.TcpWriteDeadline, EnvWriteDeadline); err != nil {
		return err
	}

	if v, ok := os.LookupEnv(EnvReportPath); ok {
		c.ReportPath = v
	}

	if v, ok := os.LookupEnv(EnvQueueLength); ok {
		n, err := strconv.ParseUint(v, 10, 16)
		if err != nil {
			err = fmt.Errorf("%s: invalid %s=%s, err=%w", c.LogPrefix, EnvQueueLength, v, err)
			log.Printf("%s", err.Error())
			return err
		}
		c.QueueLength = uint16(n)
	}

	if v, ok := os.LookupEnv(EnvDebug); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			err = fmt.Errorf("%s: invalid %s=%s, err=%w", c.LogPrefix, EnvDebug, v, err)
			log.Printf("%s", err.Error())
			return err
		}
		c.LogDebug = b
	}

	return nil
}

func loadEnvDuration(dst *time.Duration, key string) error {
	v, ok := os.LookupEnv(key)
	if !ok {
		return nil
	}

	d, err := time.ParseDuration(v)
	if err != nil {
		err = fmt.Errorf("invalid %s=%s, err=%w", key, v, err)
		log.Printf("%s", err.Error())
		return err
	}

	*dst = d
	return nil
}
