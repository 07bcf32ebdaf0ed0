package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"

	"github.com/steam-tracker/internal/domain"
	"github.com/steam-tracker/internal/kafka"
)

type sampleTitle struct {
	id   string
	name string
}

var titles = []sampleTitle{
	{"440", "Team Fortress 2"},
	{"620", "Portal 2"},
	{"570", "Dota 2"},
	{"730", "Counter-Strike 2"},
	{"1145360", "Hades"},
	{"367520", "Hollow Knight"},
	{"413150", "Stardew Valley"},
	{"1086940", "Baldur's Gate 3"},
	{"292030", "The Witcher 3: Wild Hunt"},
	{"105600", "Terraria"},
}

var kinds = []domain.LookupKind{
	domain.LookupKindAchievements,
	domain.LookupKindAchievements,
	domain.LookupKindAchievements,
	domain.LookupKindLibrary,
	domain.LookupKindProfile,
	domain.LookupKindGuide,
}

// playerID returns a stable fake 64-bit Steam ID for index idx.
func playerID(idx int) string {
	return strconv.FormatInt(76561197960265728+int64(idx), 10)
}

// pickTitle favours the first few titles so the trending ranking has a
// clear head.
func pickTitle() sampleTitle {
	if rand.Intn(100) < 70 {
		return titles[rand.Intn(3)]
	}
	return titles[rand.Intn(len(titles))]
}

func randomEvent(players int) domain.LookupEvent {
	kind := kinds[rand.Intn(len(kinds))]
	event := domain.LookupEvent{
		ID:         uuid.New().String(),
		Kind:       kind,
		DurationMS: int64(rand.Intn(400) + 40),
		OccurredAt: time.Now().UTC(),
	}

	switch kind {
	case domain.LookupKindAchievements:
		title := pickTitle()
		event.PlayerID = playerID(rand.Intn(players))
		event.Handle = event.PlayerID
		event.TitleID = title.id
		event.GameName = title.name
		event.Found = rand.Intn(10) > 0
	case domain.LookupKindLibrary:
		event.PlayerID = playerID(rand.Intn(players))
		event.Handle = event.PlayerID
		event.Found = rand.Intn(5) > 0
	case domain.LookupKindProfile:
		event.PlayerID = playerID(rand.Intn(players))
		event.Handle = event.PlayerID
		event.Found = true
	case domain.LookupKindGuide:
		event.GameName = pickTitle().name
		event.Found = true
	}
	return event
}

func main() {
	brokers := flag.String("brokers", "localhost:9094", "Kafka brokers (comma-separated)")
	topic := flag.String("topic", "steam-lookups", "Kafka topic")
	players := flag.Int("players", 1000, "Number of distinct fake players")
	rate := flag.Int("rate", 50, "Lookup events per second")
	duration := flag.Duration("duration", 0, "Duration to run (0 = forever)")
	flag.Parse()

	if *rate <= 0 || *players <= 0 {
		log.Fatal("rate and players must be positive")
	}

	fmt.Println("Synthetic lookup producer")
	fmt.Printf("  Brokers:     %s\n", *brokers)
	fmt.Printf("  Topic:       %s\n", *topic)
	fmt.Printf("  Players:     %d\n", *players)
	fmt.Printf("  Events/sec:  %d\n", *rate)
	fmt.Println()

	config := sarama.NewConfig()
	config.Producer.RequiredAcks = sarama.WaitForLocal
	config.Producer.Compression = sarama.CompressionSnappy
	config.Producer.Flush.Frequency = 100 * time.Millisecond
	config.Producer.Flush.Messages = 100
	config.Producer.Return.Successes = true
	config.Producer.Return.Errors = true

	producer, err := sarama.NewAsyncProducer(strings.Split(*brokers, ","), config)
	if err != nil {
		log.Fatalf("Failed to create producer: %v", err)
	}

	var successCount, errorCount, sentCount int64
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

	shutdown := func(reason string) {
		fmt.Printf("\n%s, shutting down...\n", reason)
		producer.AsyncClose()
		wg.Wait()
		fmt.Printf("Completed. Sent: %d, Errors: %d\n", atomic.LoadInt64(&successCount), atomic.LoadInt64(&errorCount))
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(time.Second / time.Duration(*rate))
	defer ticker.Stop()

	statsTicker := time.NewTicker(5 * time.Second)
	defer statsTicker.Stop()

	var deadline <-chan time.Time
	if *duration > 0 {
		deadline = time.After(*duration)
	}

	for {
		select {
		case <-sigChan:
			shutdown("Interrupted")
			return

		case <-deadline:
			shutdown("Duration reached")
			return

		case <-ticker.C:
			event := randomEvent(*players)
			data, err := kafka.EncodeEvent(event)
			if err != nil {
				log.Printf("Failed to encode event: %v", err)
				continue
			}

			producer.Input() <- &sarama.ProducerMessage{
				Topic: *topic,
				Key:   sarama.StringEncoder(kafka.MessageKey(event)),
				Value: sarama.ByteEncoder(data),
			}
			atomic.AddInt64(&sentCount, 1)

		case <-statsTicker.C:
			fmt.Printf("[%s] Generated: %d | Acked: %d | Errors: %d\n",
				time.Now().Format("15:04:05"),
				atomic.LoadInt64(&sentCount),
				atomic.LoadInt64(&successCount),
				atomic.LoadInt64(&errorCount),
			)
		}
	}
}
