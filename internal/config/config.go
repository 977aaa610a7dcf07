package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Addr          string
	DataDir       string
	DBPath        string
	PollInterval  time.Duration
	HistoryLimit  int
	RetentionDays int
	MQTTBroker    string
	MQTTTopic     string
	MQTTClientID  string
}

func Load() Config {
	dataDir := getenv("APP_DATA_DIR", "./data")
	return Config{
		Addr:          getenv("APP_ADDR", ":8080"),
		DataDir:       dataDir,
		DBPath:        getenv("APP_DB_PATH", dataDir+"/readings.db"),
		PollInterval:  getenvDuration("APP_POLL_INTERVAL", 12*time.Second),
		HistoryLimit:  getenvInt("APP_HISTORY_LIMIT", 0),
		RetentionDays: getenvInt("APP_RETENTION_DAYS", 30),
		MQTTBroker:    getenv("MQTT_BROKER", "tcp://localhost:1883"),
		MQTTTopic:     getenv("MQTT_TOPIC", "biodigester/readings"),
		MQTTClientID:  getenv("MQTT_CLIENT_ID", "biodash-server"),
	}
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func getenvInt(k string, d int) int {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return d
	}
	return n
}

func getenvDuration(k string, d time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	dur, err := time.ParseDuration(v)
	if err != nil {
		return d
	}
	return dur
}
