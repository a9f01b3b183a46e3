// cli is a thin client for the bot server: one-shot commands over the HTTP
// endpoint, the REST catalog view, and an interactive chat-room session.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"novelbible/pkg/models"
)

const defaultBaseURL = "http://localhost:8080"

type reply struct {
	Type    string   `json:"type"`
	Text    string   `json:"text,omitempty"`
	Entries []string `json:"entries,omitempty"`
}

type commandResponse struct {
	RequestID string  `json:"request_id"`
	Replies   []reply `json:"replies"`
}

type novelListResponse struct {
	Query string         `json:"query"`
	Limit int            `json:"limit"`
	Items []models.Novel `json:"items"`
}

func main() {
	global := flag.NewFlagSet("novelbible", flag.ExitOnError)
	baseURL := global.String("api", defaultBaseURL, "API base URL")
	user := global.String("user", "cli", "user identity for search sessions")
	if err := global.Parse(os.Args[1:]); err != nil {
		log.Fatalf("parse flags: %v", err)
	}
	args := global.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	ctx := context.Background()
	client := &http.Client{Timeout: 30 * time.Second}

	switch args[0] {
	case "search":
		if len(args) < 2 {
			log.Fatal("usage: novelbible search <书名/作者> [序号]")
		}
		runCommand(ctx, client, *baseURL, *user, "扫书 "+strings.Join(args[1:], " "))
	case "stats":
		runCommand(ctx, client, *baseURL, *user, "扫书统计")
	case "term":
		if len(args) < 3 {
			log.Fatal("usage: novelbible term <防御|郁闷|雷点|术语> <词条|列表>")
		}
		runCommand(ctx, client, *baseURL, *user, args[1]+" "+strings.Join(args[2:], " "))
	case "novels":
		handleNovels(ctx, client, *baseURL, args[1:])
	case "chat":
		handleChat(*baseURL, args[1:])
	default:
		printUsage()
		os.Exit(1)
	}
}

func runCommand(ctx context.Context, client *http.Client, baseURL, user, text string) {
	payload := map[string]string{"user": user, "text": text}
	var resp commandResponse
	if err := doJSON(ctx, client, http.MethodPost, baseURL+"/commands", payload, &resp); err != nil {
		log.Fatalf("command failed: %v", err)
	}
	printReplies(resp.Replies)
}

func printReplies(replies []reply) {
	for _, r := range replies {
		switch r.Type {
		case "batch":
			for _, entry := range r.Entries {
				fmt.Println(entry)
				fmt.Println()
			}
		default:
			fmt.Println(r.Text)
		}
	}
}

func handleNovels(ctx context.Context, client *http.Client, baseURL string, args []string) {
	fs := flag.NewFlagSet("novels", flag.ExitOnError)
	q := fs.String("q", "", "substring of title/author/aliases")
	limit := fs.Int("limit", 10, "max results")
	_ = fs.Parse(args)

	if *q == "" {
		log.Fatal("usage: novelbible novels -q <keyword> [-limit N]")
	}

	endpoint := fmt.Sprintf("%s/novels?q=%s&limit=%d", baseURL, url.QueryEscape(*q), *limit)
	var resp novelListResponse
	if err := doJSON(ctx, client, http.MethodGet, endpoint, nil, &resp); err != nil {
		log.Fatalf("novels failed: %v", err)
	}

	for i, n := range resp.Items {
		author := n.Author
		if author == "" {
			author = "未知"
		}
		fmt.Printf("%d. [%d] 《%s》 - %s\n", i+1, n.ID, n.Title, author)
	}
	if len(resp.Items) == 0 {
		fmt.Println("no matches")
	}
}

func handleChat(baseURL string, args []string) {
	fs := flag.NewFlagSet("chat", flag.ExitOnError)
	room := fs.String("room", "lobby", "room id")
	name := fs.String("name", "guest", "display name")
	_ = fs.Parse(args)

	wsURL, err := websocketURL(baseURL, "/ws", url.Values{
		"room": {*room},
		"user": {*name},
	})
	if err != nil {
		log.Fatalf("ws url: %v", err)
	}

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		log.Fatalf("chat connect failed: %v", err)
	}
	defer conn.Close()
	log.Printf("[chat] joined %s as %s", *room, *name)

	go func() {
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			fmt.Println(string(msg))
		}
	}()

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		if err := conn.WriteMessage(websocket.TextMessage, []byte(text)); err != nil {
			log.Fatalf("send failed: %v", err)
		}
	}
}

func doJSON(ctx context.Context, client *http.Client, method, endpoint string, payload any, out any) error {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = strings.NewReader(string(b))
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("%s %s failed: %s", method, endpoint, strings.TrimSpace(string(data)))
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(data, out)
}

func websocketURL(baseURL, path string, query url.Values) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", err
	}
	scheme := "ws"
	if u.Scheme == "https" {
		scheme = "wss"
	}
	return (&url.URL{
		Scheme:   scheme,
		Host:     u.Host,
		Path:     path,
		RawQuery: query.Encode(),
	}).String(), nil
}

func printUsage() {
	fmt.Println("novelbible <command> [flags]")
	fmt.Println("commands:")
	fmt.Println("  search <书名/作者> [序号]")
	fmt.Println("  stats")
	fmt.Println("  term <防御|郁闷|雷点|术语> <词条|列表>")
	fmt.Println("  novels -q <keyword> [-limit N]")
	fmt.Println("  chat [-room R] [-name N]")
}
