// Package main provides a load tool for the realtime feed WebSocket.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"devhub/internal/models"

	"github.com/gorilla/websocket"
)

// Metrics tracks the test results
type Metrics struct {
	ConnectionsAttempted int64
	ConnectionsSuccess   int64
	ConnectionsFailed    int64
	PostsCreated         int64
	EventsReceived       int64
	Errors               int64
}

var (
	metrics    Metrics
	eventsMu   sync.Mutex
	eventTypes = map[string]int{}
)

func main() {
	host := flag.String("host", "localhost:5000", "API server host")
	email := flag.String("email", "admin@example.com", "Test user email")
	password := flag.String("password", "password123", "Test user password")
	clients := flag.Int("clients", 50, "Number of concurrent feed listeners")
	postEvery := flag.Duration("post-every", 5*time.Second, "Interval between generated posts (0 disables)")
	duration := flag.Duration("duration", 30*time.Second, "Test duration")
	flag.Parse()

	log.Printf("🚀 Starting Feed Watch")
	log.Printf("Target: %s", *host)
	log.Printf("Clients: %d", *clients)
	log.Printf("Duration: %v", *duration)

	token, err := login(*host, *email, *password)
	if err != nil {
		log.Fatalf("❌ Login failed: %v", err)
	}
	log.Printf("✅ Logged in successfully")

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	var wg sync.WaitGroup
	stopChan := make(chan struct{})

	for i := 0; i < *clients; i++ {
		wg.Add(1)
		go runListener(*host, token, stopChan, &wg)
		time.Sleep(50 * time.Millisecond) // Stagger connections to allow ticket issuance
	}

	if *postEvery > 0 {
		wg.Add(1)
		go runPoster(*host, token, *postEvery, stopChan, &wg)
	}

	select {
	case <-time.After(*duration):
		log.Println("⏱️  Test duration reached")
	case <-interrupt:
		log.Println("🛑 Interrupted by user")
	}

	close(stopChan)
	log.Println("Waiting for clients to disconnect...")
	wg.Wait()

	printMetrics()
}

func postJSON(rawURL, token string, payload any, out any) error {
	var body bytes.Buffer
	if payload != nil {
		if err := json.NewEncoder(&body).Encode(payload); err != nil {
			return err
		}
	}
	req, err := http.NewRequest(http.MethodPost, rawURL, &body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("x-auth-token", token)
	}

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s failed with status %d", rawURL, resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func login(host, email, password string) (string, error) {
	var result struct {
		Token string `json:"token"`
	}
	err := postJSON(fmt.Sprintf("http://%s/api/auth", host), "", map[string]string{
		"email":    email,
		"password": password,
	}, &result)
	return result.Token, err
}

func getTicket(host, token string) (string, error) {
	var result struct {
		Ticket string `json:"ticket"`
	}
	err := postJSON(fmt.Sprintf("http://%s/api/ws/ticket", host), token, nil, &result)
	return result.Ticket, err
}

func runListener(host, token string, stopChan <-chan struct{}, wg *sync.WaitGroup) {
	defer wg.Done()
	atomic.AddInt64(&metrics.ConnectionsAttempted, 1)

	// Get a fresh ticket for this connection
	ticket, err := getTicket(host, token)
	if err != nil {
		atomic.AddInt64(&metrics.ConnectionsFailed, 1)
		atomic.AddInt64(&metrics.Errors, 1)
		return
	}

	u := url.URL{Scheme: "ws", Host: host, Path: "/api/ws/feed", RawQuery: "ticket=" + ticket}
	c, resp, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		atomic.AddInt64(&metrics.ConnectionsFailed, 1)
		atomic.AddInt64(&metrics.Errors, 1)
		return
	}
	if resp != nil && resp.Body != nil {
		defer func() { _ = resp.Body.Close() }()
	}
	defer func() { _ = c.Close() }()

	atomic.AddInt64(&metrics.ConnectionsSuccess, 1)

	go func() {
		<-stopChan
		_ = c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		_ = c.Close()
	}()

	for {
		_, raw, err := c.ReadMessage()
		if err != nil {
			return
		}
		atomic.AddInt64(&metrics.EventsReceived, 1)

		var event models.FeedEvent
		if err := json.Unmarshal(raw, &event); err != nil {
			atomic.AddInt64(&metrics.Errors, 1)
			continue
		}
		eventsMu.Lock()
		eventTypes[event.Type]++
		eventsMu.Unlock()
	}
}

func runPoster(host, token string, every time.Duration, stopChan <-chan struct{}, wg *sync.WaitGroup) {
	defer wg.Done()
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for i := 1; ; i++ {
		select {
		case <-stopChan:
			return
		case <-ticker.C:
			err := postJSON(fmt.Sprintf("http://%s/api/posts", host), token, map[string]string{
				"text": fmt.Sprintf("feedwatch post %d at %s", i, time.Now().Format(time.RFC3339)),
			}, nil)
			if err != nil {
				atomic.AddInt64(&metrics.Errors, 1)
				continue
			}
			atomic.AddInt64(&metrics.PostsCreated, 1)
		}
	}
}

func printMetrics() {
	log.Println("\n📊 Test Results")
	log.Println("===============")
	log.Printf("Connections Attempted: %d", atomic.LoadInt64(&metrics.ConnectionsAttempted))
	log.Printf("Connections Successful: %d", atomic.LoadInt64(&metrics.ConnectionsSuccess))
	log.Printf("Connections Failed: %d", atomic.LoadInt64(&metrics.ConnectionsFailed))
	log.Printf("Posts Created: %d", atomic.LoadInt64(&metrics.PostsCreated))
	log.Printf("Events Received: %d", atomic.LoadInt64(&metrics.EventsReceived))
	eventsMu.Lock()
	for typ, n := range eventTypes {
		log.Printf("  %s: %d", typ, n)
	}
	eventsMu.Unlock()
	log.Printf("Total Errors: %d", atomic.LoadInt64(&metrics.Errors))
}
