package feed

import (
	"bufio"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"
)

// Sentence is one raw NMEA line received from a GPS feed
type Sentence struct {
	Source    string
	Raw       string
	Timestamp time.Time
}

// Feed maintains TCP connections to one or more NMEA GPS feeds and
// delivers raw sentences over a channel. Connections reconnect
// automatically with a fixed delay.
type Feed struct {
	sources  []string
	conns    map[string]net.Conn
	sentChan chan Sentence
	wg       sync.WaitGroup
	stopChan chan struct{}
	mu       sync.Mutex
}

// New creates a Feed for the given host:port sources
func New(sources []string) *Feed {
	return &Feed{
		sources:  sources,
		conns:    make(map[string]net.Conn),
		sentChan: make(chan Sentence, 1000), // Buffer size of 1000 sentences
		stopChan: make(chan struct{}),
	}
}

// Start begins reading sentences from all sources
func (f *Feed) Start() error {
	for _, source := range f.sources {
		f.wg.Add(1)
		go f.connectToSource(source)
	}
	return nil
}

// Stop gracefully stops the feed
func (f *Feed) Stop() {
	close(f.stopChan)
	f.mu.Lock()
	for _, conn := range f.conns {
		conn.Close()
	}
	f.mu.Unlock()
	f.wg.Wait()
	close(f.sentChan)
}

// Sentences returns the channel for receiving raw sentences
func (f *Feed) Sentences() <-chan Sentence {
	return f.sentChan
}

// configureTCPKeepalive configures TCP keepalive settings
func (f *Feed) configureTCPKeepalive(conn net.Conn, source string) {
	if tcpConn, ok := conn.(*net.TCPConn); ok {
		if err := tcpConn.SetKeepAlive(true); err != nil {
			fmt.Printf("Warning: failed to set keepalive for %s: %v\n", source, err)
		}
		if err := tcpConn.SetKeepAlivePeriod(2 * time.Second); err != nil {
			fmt.Printf("Warning: failed to set keepalive period for %s: %v\n", source, err)
		}
		if err := tcpConn.SetNoDelay(true); err != nil {
			fmt.Printf("Warning: failed to set no delay for %s: %v\n", source, err)
		}
	}
}

func (f *Feed) connectToSource(source string) {
	defer f.wg.Done()

	reconnectDelay := 5 * time.Second
	firstConnection := true

	for {
		select {
		case <-f.stopChan:
			return
		default:
			if firstConnection {
				fmt.Printf("Attempting to connect to %s...\n", source)
				firstConnection = false
			}

			conn, err := net.Dial("tcp", source)
			if err != nil {
				select {
				case <-f.stopChan:
					return
				case <-time.After(reconnectDelay):
				}
				continue
			}

			f.configureTCPKeepalive(conn, source)
			fmt.Printf("Connected to GPS feed %s\n", source)

			f.mu.Lock()
			f.conns[source] = conn
			f.mu.Unlock()

			f.readSentences(source, conn)

			// Connection closed; clean up and reconnect
			f.mu.Lock()
			delete(f.conns, source)
			f.mu.Unlock()
		}
	}
}

// readSentences reads newline-delimited NMEA sentences until the
// connection drops or the feed stops
func (f *Feed) readSentences(source string, conn net.Conn) {
	defer conn.Close()

	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		select {
		case <-f.stopChan:
			return
		default:
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		select {
		case f.sentChan <- Sentence{
			Source:    source,
			Raw:       line,
			Timestamp: time.Now().UTC(),
		}:
		case <-f.stopChan:
			return
		}
	}

	if err := scanner.Err(); err != nil {
		fmt.Printf("Read error from %s: %v\n", source, err)
	}
}
