// Command wsclient streams a raw PCM S16LE file to the /ws endpoint and
// prints transcript events as they arrive, pacing frames to simulate a
// real-time audio source.
package main

import (
	"encoding/json"
	"flag"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/olivierpetitjean/sentinel-vosk-server/internal/models"
)

func main() {
	serverURL := flag.String("server", "ws://localhost:8000/ws", "WebSocket endpoint URL")
	audioFile := flag.String("audio", "", "Path to raw PCM S16LE mono file")
	sampleRate := flag.Int("rate", 16000, "Sample rate of the PCM file in Hz")
	chunkMs := flag.Int("chunk-ms", 100, "Frame duration in milliseconds")
	flag.Parse()

	if *audioFile == "" {
		log.Fatal("missing -audio: path to a raw PCM S16LE file")
	}

	url := *serverURL
	if !strings.Contains(url, "sample_rate=") {
		sep := "?"
		if strings.Contains(url, "?") {
			sep = "&"
		}
		url = url + sep + "sample_rate=" + strconv.Itoa(*sampleRate)
	}

	f, err := os.Open(*audioFile)
	if err != nil {
		log.Fatalf("failed to open audio file: %v", err)
	}
	defer f.Close()

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		log.Fatalf("failed to connect to %s: %v", url, err)
	}
	defer conn.Close()
	log.Printf("connected to %s", url)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			var ev models.TranscriptEvent
			if err := json.Unmarshal(msg, &ev); err != nil {
				log.Printf("bad event: %v", err)
				continue
			}
			switch ev.Type {
			case models.EventPartial:
				if ev.Text != "" {
					log.Printf("partial: %s", ev.Text)
				}
			case models.EventFinal:
				log.Printf("final: %s", ev.Text)
			}
		}
	}()

	// bytes per chunk = rate * 2 bytes/sample * chunkMs/1000
	chunkSize := *sampleRate * 2 * *chunkMs / 1000
	chunk := make([]byte, chunkSize)
	var totalBytes int64

	for {
		n, err := f.Read(chunk)
		if n > 0 {
			totalBytes += int64(n)
			if werr := conn.WriteMessage(websocket.BinaryMessage, chunk[:n]); werr != nil {
				log.Fatalf("failed to send frame: %v", werr)
			}
			time.Sleep(time.Duration(*chunkMs) * time.Millisecond)
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Fatalf("failed to read audio: %v", err)
		}
	}

	log.Printf("finished streaming %d bytes, waiting for final transcript", totalBytes)

	deadline := time.Now().Add(time.Second)
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		log.Println("timed out waiting for server close")
	}
}
