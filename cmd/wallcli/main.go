// Package main provides the wall CLI entry point for testing and operations.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/alecthomas/kingpin/v2"
	"github.com/coder/websocket"
	"github.com/joho/godotenv"

	"github.com/osa030/welcomewall/internal/app/board"
	"github.com/osa030/welcomewall/internal/app/watch"
)

var (
	app    = kingpin.New("welcomewall-cli", "welcomewall dashboard client for testing")
	server = app.Flag("server", "Server address").Default("http://localhost:8080").String()

	stateCmd  = app.Command("state", "Print the board's current state")
	watchCmd  = app.Command("watch", "Stream board notices")
	muteCmd   = app.Command("mute", "Mute audio and speech")
	unmuteCmd = app.Command("unmute", "Unmute audio and speech")
)

func main() {
	// Load .env file if it exists (errors are ignored)
	_ = godotenv.Load()

	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	switch command {
	case stateCmd.FullCommand():
		printState()
	case watchCmd.FullCommand():
		watchNotices()
	case muteCmd.FullCommand():
		setMuted(true)
	case unmuteCmd.FullCommand():
		setMuted(false)
	}
}

func printState() {
	resp, err := http.Get(*server + "/api/state")
	if err != nil {
		fail("Error: %v", err)
	}
	defer resp.Body.Close()

	var status board.Status
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		fail("Error decoding response: %v", err)
	}

	fmt.Printf("Board:       %s\n", status.BoardID)
	fmt.Printf("Total:       %d\n", status.Total)
	fmt.Printf("Cycle:       %s\n", status.CycleState)
	fmt.Printf("Muted:       %v\n", status.Muted)
	if status.Current != nil {
		fmt.Printf("Showing:     %s (%s)\n", status.Current.DisplayName, status.Current.ID)
	} else {
		fmt.Printf("Showing:     -\n")
	}
	fmt.Printf("Ticker:      %s\n", strings.Join(status.Ticker, ", "))
	fmt.Printf("Last poll:   %s\n", status.LastPollAt)
	if status.FetchFailures > 0 {
		fmt.Printf("Poll errors: %d consecutive\n", status.FetchFailures)
	}
}

func watchNotices() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	wsURL := strings.Replace(*server, "http", "ws", 1) + "/ws"
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		fail("Error: %v", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	fmt.Printf("Watching %s\n", wsURL)
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			return
		}

		var n watch.Notice
		if err := json.Unmarshal(data, &n); err != nil {
			continue
		}

		if line, ok := formatNotice(n); ok {
			fmt.Println(line)
		}
	}
}

// formatNotice renders a notice as a display line. Payload fields are
// optional on the wire; never trust a notice to carry the one its type
// implies.
func formatNotice(n watch.Notice) (string, bool) {
	switch n.Type {
	case watch.NoticeShown:
		if n.Announcement == nil {
			return "", false
		}
		return fmt.Sprintf("[%d] shown: %s", n.Seq, n.Announcement.DisplayName), true
	case watch.NoticeCleared:
		return fmt.Sprintf("[%d] cleared", n.Seq), true
	case watch.NoticeBoard:
		return fmt.Sprintf("[%d] board: total=%d ticker=%s", n.Seq, n.Total, strings.Join(n.Ticker, ",")), true
	case watch.NoticeBurst:
		if n.Burst == nil {
			return "", false
		}
		return fmt.Sprintf("[%d] burst: particles=%d", n.Seq, n.Burst.ParticleCount), true
	case watch.NoticeMuted:
		if n.Muted == nil {
			return "", false
		}
		return fmt.Sprintf("[%d] muted: %v", n.Seq, *n.Muted), true
	}
	return "", false
}

func setMuted(muted bool) {
	body, _ := json.Marshal(map[string]bool{"muted": muted})
	resp, err := http.Post(*server+"/api/mute", "application/json", bytes.NewReader(body))
	if err != nil {
		fail("Error: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		fail("Error: server returned %s", resp.Status)
	}
	fmt.Printf("muted=%v\n", muted)
}

func fail(format string, args ...any) {
	fmt.Printf(format+"\n", args...)
	os.Exit(1)
}
