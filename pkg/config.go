package dqm

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Configuration struct {
	MGPAGains        []int  `json:"mgpa_gains" yaml:"mgpa_gains"`
	MGPAGainsPN      []int  `json:"mgpa_gains_pn" yaml:"mgpa_gains_pn"`
	Task             string `json:"task" yaml:"task"`
	FileIn           string `json:"file_in" yaml:"file_in"`
	FileOut          string `json:"file_out" yaml:"file_out"`
	WatchDir         string `json:"watch_dir" yaml:"watch_dir"`
	MaxEvents        int    `json:"max_events" yaml:"max_events"`
	Skip             int    `json:"skip" yaml:"skip"`
	Verbosity        int    `json:"verbosity" yaml:"verbosity"`
	Discard          bool   `json:"discard" yaml:"discard"`
	NumWorkers       int    `json:"num_workers" yaml:"num_workers"`
	NoDB             bool   `json:"no_db" yaml:"no_db"`
	DBDriver         string `json:"db_driver" yaml:"db_driver"`
	Host             string `json:"host" yaml:"host"`
	User             string `json:"user" yaml:"user"`
	Passwd           string `json:"pass" yaml:"pass"`
	DBName           string `json:"dbname" yaml:"dbname"`
	RunNumber        int    `json:"run_number" yaml:"run_number"`
	CompressionLevel int    `json:"compression_level" yaml:"compression_level"`
	PublishEvery     int    `json:"publish_every" yaml:"publish_every"`
	MetricsAddr      string `json:"metrics_addr" yaml:"metrics_addr"`
	EnvFile          string `json:"env_file" yaml:"env_file"`
}

// Environment variables read after the optional env file is loaded.
const (
	envDBHost = "ECALDQM_DB_HOST"
	envDBUser = "ECALDQM_DB_USER"
	envDBPass = "ECALDQM_DB_PASS"
	envDBName = "ECALDQM_DB_NAME"
)

var configuration = DefaultConfiguration()

func GetConfiguration() Configuration {
	return configuration
}

func SetConfiguration(config Configuration) {
	configuration = config
}

func DefaultConfiguration() Configuration {
	return Configuration{
		MGPAGains:        []int{1, 6, 12},
		MGPAGainsPN:      []int{1, 16},
		Task:             PedestalTaskName,
		MaxEvents:        1000000000,
		Skip:             0,
		Verbosity:        0,
		Discard:          true,
		NumWorkers:       1,
		NoDB:             false,
		DBDriver:         "mysql",
		Host:             "localhost",
		User:             "ecalreader",
		Passwd:           "readonly",
		DBName:           "ECALCONDITIONS",
		CompressionLevel: 4,
		PublishEvery:     0,
	}
}

func LoadConfiguration(filename string) (Configuration, error) {
	config := DefaultConfiguration()

	data, err := os.ReadFile(filename)
	if err != nil {
		return config, &ErrOpenFile{Filename: filename, Err: err}
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &config)
	default:
		err = json.Unmarshal(data, &config)
	}
	if err != nil {
		return config, fmt.Errorf("error parsing configuration file %q: %w", filename, err)
	}

	if config.EnvFile != "" {
		if err := godotenv.Load(config.EnvFile); err != nil {
			return config, fmt.Errorf("error loading env file %q: %w", config.EnvFile, err)
		}
	}
	applyEnvironment(&config)
	return config, nil
}

func applyEnvironment(config *Configuration) {
	if v, ok := os.LookupEnv(envDBHost); ok {
		config.Host = v
	}
	if v, ok := os.LookupEnv(envDBUser); ok {
		config.User = v
	}
	if v, ok := os.LookupEnv(envDBPass); ok {
		config.Passwd = v
	}
	if v, ok := os.LookupEnv(envDBName); ok {
		config.DBName = v
	}
}

// TaskParameters returns the subset of the configuration read by monitoring tasks.
func (c Configuration) TaskParameters() TaskParameters {
	return TaskParameters{
		MGPAGains:   c.MGPAGains,
		MGPAGainsPN: c.MGPAGainsPN,
	}
}
