package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math/rand/v2"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Cormuckle/dist_systems_group_M/arena_server/config"
	"github.com/Cormuckle/dist_systems_group_M/arena_server/eventfeed"
	"github.com/Cormuckle/dist_systems_group_M/arena_server/kafka"
	"github.com/Cormuckle/dist_systems_group_M/arena_server/results"
	"github.com/Cormuckle/dist_systems_group_M/arena_server/sim"
	"github.com/Cormuckle/dist_systems_group_M/arena_server/websocket"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// pinger is satisfied by the MongoDB recorder.
type pinger interface {
	Ping(ctx context.Context) error
}

// setupRouter sets up HTTP routes for the arena server. db may be nil when
// the elimination log is disabled.
func setupRouter(loop *sim.Loop, tuning sim.Tuning, tickHz int, db pinger) *gin.Engine {
	r := gin.Default()
	r.Use(cors.Default())

	// Health check endpoint.
	r.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})

	// WebSocket endpoint.
	ws := websocket.NewHandler(loop)
	r.GET("/ws", func(c *gin.Context) {
		ws.ServeHTTP(c.Writer, c.Request)
	})

	// Static world parameters clients need before joining.
	r.GET("/world", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"worldSize":       tuning.WorldSize,
			"tickHz":          tickHz,
			"foodCount":       tuning.FoodCount,
			"leaderboardSize": tuning.LeaderboardSize,
		})
	})

	r.GET("/leaderboard", func(c *gin.Context) {
		c.JSON(http.StatusOK, loop.Leaderboard())
	})

	r.GET("/stats", func(c *gin.Context) {
		c.JSON(http.StatusOK, loop.Stats())
	})

	r.GET("/dbconn", func(c *gin.Context) {
		if db == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Elimination log is disabled"})
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := db.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Unable to connect to database"})
			return
		}
		c.String(http.StatusOK, "Able to connect to DB")
	})

	// Send an announcement to every connected client.
	r.POST("/announce", func(c *gin.Context) {
		var req struct {
			Message string `json:"message" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		if !loop.Submit(sim.Announce{Message: req.Message}) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Simulation is shutting down"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "Announcement queued"})
	})

	return r
}

// notifyCentralServer sends a registration request to the central server.
func notifyCentralServer(centralServerURL, serverID string) error {
	payload, err := json.Marshal(map[string]string{"chunk_id": serverID})
	if err != nil {
		return fmt.Errorf("failed to encode registration: %w", err)
	}
	req, err := http.NewRequest(http.MethodPost, centralServerURL+"/register_chunk", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to notify central server: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusOK {
		log.Println("Server ID successfully registered with central server")
		return nil
	}
	return fmt.Errorf("failed to register with central server, status: %d", resp.StatusCode)
}

// relayAnnouncements forwards messages from the broadcast topic to clients,
// restarting the partition consumer after errors.
func relayAnnouncements(ctx context.Context, consumer *kafka.Consumer, topic string, loop *sim.Loop) {
	log.Printf("Listening for announcements on topic %s", topic)
	for {
		err := consumer.Relay(ctx, topic, func(msg string) {
			loop.Submit(sim.Announce{Message: msg})
		})
		if ctx.Err() != nil {
			return
		}
		log.Printf("Error consuming from topic %s: %v", topic, err)
		select {
		case <-ctx.Done():
			return
		case <-time.After(2 * time.Second):
		}
	}
}

func main() {
	config.InitConfig()
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	log.Printf("Server ID: %s", cfg.ServerID)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		sinks    []eventfeed.Sink
		producer *kafka.Producer
		consumer *kafka.Consumer
		recorder *results.Recorder
	)

	if cfg.KafkaEnabled() {
		producer, err = kafka.NewProducer(cfg.KafkaBroker)
		if err != nil {
			log.Fatalf("Failed to initialize Kafka producer: %v", err)
		}
		if err := producer.CreateTopic(cfg.KafkaEventsTopic); err != nil {
			log.Printf("Error creating Kafka topic: %v", err)
		}
		sinks = append(sinks, kafka.NewEventPublisher(producer, cfg.KafkaEventsTopic))

		consumer, err = kafka.NewConsumer(cfg.KafkaBroker)
		if err != nil {
			log.Fatalf("Failed to initialize Kafka consumer: %v", err)
		}
	}

	if cfg.MongoEnabled() {
		recorder, err = results.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			log.Printf("Elimination log disabled: %v", err)
			recorder = nil
		} else {
			sinks = append(sinks, recorder)
		}
	}

	tuning := sim.DefaultTuning()
	tuning.WorldSize = cfg.WorldSize
	tuning.FoodCount = cfg.FoodCount
	if err := tuning.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	seed := uint64(time.Now().UnixNano())
	world := sim.NewWorld(tuning, rand.New(rand.NewPCG(seed, seed>>1)))

	events := eventfeed.NewDispatcher(cfg.ServerID, 1024, sinks...)
	loop := sim.NewLoop(world, sim.Options{TickHz: cfg.TickHz, Events: events})
	go loop.Run()

	if consumer != nil {
		go relayAnnouncements(ctx, consumer, cfg.KafkaBroadcastTopic, loop)
	}

	if cfg.CentralServerURL != "" {
		if err := notifyCentralServer(cfg.CentralServerURL, cfg.ServerID); err != nil {
			log.Printf("Registration failed: %v", err)
		}
	}

	var db pinger
	if recorder != nil {
		db = recorder
	}
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: setupRouter(loop, tuning, cfg.TickHz, db),
	}
	go func() {
		log.Printf("Arena server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("HTTP server failed: %v", err)
		}
	}()

	// Graceful shutdown handling.
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan
	log.Println("Shutting down Arena Server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error shutting down HTTP server: %v", err)
	}
	loop.Stop()
	events.Close()
	cancel()
	if consumer != nil {
		consumer.Close()
	}
	if producer != nil {
		producer.Close()
	}
	if recorder != nil {
		recorder.Disconnect(shutdownCtx)
	}
}
