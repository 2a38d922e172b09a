package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"github.com/pacerank/internal/domain"
)

var participantPrefixes = []string{
	"Pacer", "Strider", "Sprinter", "Runner", "Chaser", "Racer", "Dasher", "Glider", "Kicker", "Surger",
	"Comet", "Arrow", "Falcon", "Gazelle", "Cheetah", "Stallion", "Swift", "Bolt", "Rocket", "Zephyr",
}

var teamNames = []string{
	"northside-track", "harbor-runners", "hill-crushers", "river-striders", "summit-club",
}

func participantName(idx int) string {
	prefixIdx := idx % len(participantPrefixes)
	suffix := idx/len(participantPrefixes) + 1
	return fmt.Sprintf("%s%d", participantPrefixes[prefixIdx], suffix)
}

// randomWorkout builds a synthetic workout event: a distance between 3 and
// 12 km at a 4:30-7:00 min/km pace, with a split tag for every whole
// kilometer covered.
func randomWorkout(competitionID, participantID string, withTeam bool) domain.WorkoutEvent {
	distanceKm := 3 + rand.Float64()*9
	paceSecPerKm := 270 + rand.Intn(151)
	durationSeconds := int(distanceKm * float64(paceSecPerKm))

	var tags [][]string
	for km := 1; km <= int(distanceKm); km++ {
		// Per-kilometer jitter so splits are not perfectly even
		elapsed := km*paceSecPerKm + rand.Intn(21) - 10
		tags = append(tags, domain.SplitTag(km, formatElapsed(elapsed)))
	}

	distanceMeters := distanceKm * 1000
	event := domain.WorkoutEvent{
		ID:              uuid.New().String(),
		CompetitionID:   competitionID,
		ParticipantID:   participantID,
		DistanceMeters:  &distanceMeters,
		DurationSeconds: durationSeconds,
		Tags:            tags,
		RecordedAt:      time.Now(),
	}
	if withTeam {
		event.TeamID = teamNames[rand.Intn(len(teamNames))]
	}
	return event
}

func formatElapsed(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	if seconds >= 3600 {
		return fmt.Sprintf("%d:%02d:%02d", seconds/3600, (seconds%3600)/60, seconds%60)
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

func main() {
	// Command line flags
	brokers := flag.String("brokers", "localhost:9094", "Kafka brokers (comma-separated)")
	topic := flag.String("topic", "workout-records", "Kafka topic")
	competitionID := flag.String("competition", "spring-5k", "Competition ID")
	totalParticipants := flag.Int("participants", 200, "Number of participants")
	eventsPerSecond := flag.Int("rate", 50, "Workout events per second")
	teamRatio := flag.Int("team-ratio", 60, "Percentage of workouts tagged with a team")
	duration := flag.Duration("duration", 0, "Duration to run (0 = forever)")
	flag.Parse()

	brokerList := strings.Split(*brokers, ",")

	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Println("  Workout Event Producer")
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Printf("  Brokers:       %s\n", *brokers)
	fmt.Printf("  Topic:         %s\n", *topic)
	fmt.Printf("  Competition:   %s\n", *competitionID)
	fmt.Printf("  Participants:  %d\n", *totalParticipants)
	fmt.Printf("  Events/sec:    %d\n", *eventsPerSecond)
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Println()

	// Configure Sarama producer
	config := sarama.NewConfig()
	config.Producer.RequiredAcks = sarama.WaitForLocal
	config.Producer.Compression = sarama.CompressionSnappy
	config.Producer.Flush.Frequency = 100 * time.Millisecond
	config.Producer.Flush.Messages = 100
	config.Producer.Return.Successes = true
	config.Producer.Return.Errors = true

	// Create producer
	producer, err := sarama.NewAsyncProducer(brokerList, config)
	if err != nil {
		log.Fatalf("Failed to create producer: %v", err)
	}
	defer producer.Close()

	// Handle producer errors and successes
	var successCount, errorCount int64
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		for range producer.Successes() {
			atomic.AddInt64(&successCount, 1)
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		for err := range producer.Errors() {
			atomic.AddInt64(&errorCount, 1)
			log.Printf("Producer error: %v", err)
		}
	}()

	// Handle shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	done := make(chan struct{})

	// Send message helper
	sendEvent := func(event domain.WorkoutEvent) {
		data, err := json.Marshal(event)
		if err != nil {
			log.Printf("Failed to marshal event: %v", err)
			return
		}

		msg := &sarama.ProducerMessage{
			Topic: *topic,
			Key:   sarama.StringEncoder(event.ParticipantID),
			Value: sarama.ByteEncoder(data),
		}

		select {
		case producer.Input() <- msg:
		case <-done:
			return
		}
	}

	shutdown := func(reason string) {
		fmt.Printf("\n\n%s\n", reason)
		close(done)
		producer.AsyncClose()
		wg.Wait()
		fmt.Printf("\nCompleted. Sent: %d, Errors: %d\n", atomic.LoadInt64(&successCount), atomic.LoadInt64(&errorCount))
	}

	fmt.Printf("Emitting workouts (%d/sec)\n", *eventsPerSecond)
	fmt.Println("Press Ctrl+C to stop")
	fmt.Println()

	interval := time.Second / time.Duration(*eventsPerSecond)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	statsTicker := time.NewTicker(5 * time.Second)
	defer statsTicker.Stop()

	var endTime time.Time
	if *duration > 0 {
		endTime = time.Now().Add(*duration)
	}

	var eventCount int64

	for {
		select {
		case <-sigChan:
			shutdown("Shutting down...")
			return

		case <-ticker.C:
			if *duration > 0 && time.Now().After(endTime) {
				shutdown("Duration reached, shutting down...")
				return
			}

			participant := participantName(rand.Intn(*totalParticipants))
			withTeam := rand.Intn(100) < *teamRatio
			sendEvent(randomWorkout(*competitionID, participant, withTeam))
			atomic.AddInt64(&eventCount, 1)

		case <-statsTicker.C:
			fmt.Printf("[%s] Events: %d | Sent: %d | Errors: %d\n",
				time.Now().Format("15:04:05"),
				atomic.LoadInt64(&eventCount),
				atomic.LoadInt64(&successCount),
				atomic.LoadInt64(&errorCount),
			)
		}
	}
}
