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

// Config holds the server settings read from the environment.
type Config struct {
	Port      string
	ServerID  string
	TickHz    int
	WorldSize float64
	FoodCount int

	KafkaBroker         string
	KafkaEventsTopic    string
	KafkaBroadcastTopic string

	MongoURI      string
	MongoDatabase string

	CentralServerURL string
}

// KafkaEnabled reports whether a Kafka broker was configured.
func (c Config) KafkaEnabled() bool { return c.KafkaBroker != "" }

// MongoEnabled reports whether a MongoDB URI was configured.
func (c Config) MongoEnabled() bool { return c.MongoURI != "" }

// InitConfig loads a .env file from the working directory if there is one.
// Variables already set in the environment take precedence.
func InitConfig(files ...string) {
	if err := godotenv.Load(files...); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Println("No .env file found, using process environment")
			return
		}
		log.Printf("Error loading environment file: %v", err)
		return
	}
	log.Println("Successfully loaded environment variables")
}

// Load reads the configuration from the environment, applying defaults for
// anything unset.
func Load() (Config, error) {
	cfg := Config{
		Port:                getEnv("PORT", "8080"),
		ServerID:            getEnv("SERVER_ID", defaultServerID()),
		KafkaBroker:         os.Getenv("KAFKA_BOOTSTRAP_SERVER"),
		KafkaEventsTopic:    getEnv("KAFKA_EVENTS_TOPIC", "arena_events"),
		KafkaBroadcastTopic: getEnv("KAFKA_BROADCAST_TOPIC", "central_to_chunk_broadcast"),
		MongoURI:            os.Getenv("MONGO_URI"),
		MongoDatabase:       getEnv("MONGO_DATABASE", "arena"),
		CentralServerURL:    os.Getenv("CENTRAL_SERVER_URL"),
	}

	var err error
	if cfg.TickHz, err = getInt("TICK_RATE", 60); err != nil {
		return Config{}, err
	}
	if cfg.FoodCount, err = getInt("FOOD_COUNT", 150); err != nil {
		return Config{}, err
	}
	if cfg.WorldSize, err = getFloat("WORLD_SIZE", 3000); err != nil {
		return Config{}, err
	}
	if cfg.TickHz <= 0 {
		return Config{}, fmt.Errorf("TICK_RATE must be positive, got %d", cfg.TickHz)
	}
	if cfg.FoodCount < 0 {
		return Config{}, fmt.Errorf("FOOD_COUNT must not be negative, got %d", cfg.FoodCount)
	}
	if cfg.WorldSize <= 0 {
		return Config{}, fmt.Errorf("WORLD_SIZE must be positive, got %g", cfg.WorldSize)
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}

// defaultServerID uses the hostname, or a timestamp if it is unavailable.
func defaultServerID() string {
	hostname, err := os.Hostname()
	if err != nil {
		return fmt.Sprintf("arena_server_%d", time.Now().Unix())
	}
	return hostname
}
