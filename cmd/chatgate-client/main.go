// Command chatgate-client is a line-oriented test client for the
// gateway. It connects with the given identity, keeps the connection
// alive with heartbeats, and turns typed input into sample requests:
// 0 sends text, 1 sends audio, 2 sends video. Received media is saved
// under the download directory.
package main

import (
	"bufio"
	"fmt"
	"log"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"

	"chatgate/internal/media"
	"chatgate/internal/storage"
	"chatgate/pkg/protocol"
)

type clientOptions struct {
	server      string
	clientID    string
	timeZone    string
	downloadDir string
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		log.Fatal(err)
	}
}

func newRootCommand() *cobra.Command {
	var opts clientOptions

	cmd := &cobra.Command{
		Use:          "chatgate-client",
		Short:        "Interactive test client for the chat gateway",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.clientID == "" {
				return fmt.Errorf("--client-id is required")
			}
			if opts.timeZone == "" {
				return fmt.Errorf("--time-zone is required")
			}
			return runClient(opts)
		},
	}

	cmd.Flags().StringVar(&opts.server, "server", "ws://localhost:8765/ws", "gateway websocket URL")
	cmd.Flags().StringVar(&opts.clientID, "client-id", "", "client identifier")
	cmd.Flags().StringVar(&opts.timeZone, "time-zone", "", "IANA time zone name, e.g. America/New_York")
	cmd.Flags().StringVar(&opts.downloadDir, "download-dir", "./client_media", "directory for received media")
	return cmd
}

func runClient(opts clientOptions) error {
	u, err := url.Parse(opts.server)
	if err != nil {
		return fmt.Errorf("invalid server URL: %w", err)
	}
	q := u.Query()
	q.Set("client_id", opts.clientID)
	q.Set("time_zone", opts.timeZone)
	u.RawQuery = q.Encode()

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		return fmt.Errorf("connection failed: %w", err)
	}
	defer conn.Close()

	_, first, err := conn.ReadMessage()
	if err != nil {
		return fmt.Errorf("connection refused by gateway: %w", err)
	}
	if string(first) != "connected" {
		return fmt.Errorf("unexpected first message %q", first)
	}
	fmt.Printf("connected to %s as %s (%s)\n", opts.server, opts.clientID, opts.timeZone)

	downloads, err := storage.NewLocal(opts.downloadDir)
	if err != nil {
		return err
	}

	// The heartbeat keeps the connection alive while the user thinks.
	// Replies and pongs share the read side, so reads stay on the main
	// loop and the ticker only writes.
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		ticker := time.NewTicker(15 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := conn.WriteMessage(websocket.TextMessage, []byte("ping")); err != nil {
					return
				}
			case <-stop:
				return
			}
		}
	}()

	sampler := media.NewSampler("")
	scanner := bufio.NewScanner(os.Stdin)
	fmt.Println("enter request kind (0=text, 1=audio, 2=video), or q to quit")
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "q" || input == "quit" {
			return nil
		}

		req, ok := buildRequest(input, sampler)
		if !ok {
			fmt.Println("invalid input: expected 0, 1, 2 or q")
			continue
		}

		if err := exchange(conn, req, downloads); err != nil {
			return err
		}
	}
}

func buildRequest(input string, sampler *media.Sampler) (*protocol.Request, bool) {
	req := &protocol.Request{MessageID: uuid.New()}
	switch input {
	case "0":
		req.Kind = protocol.RequestText
		req.Text = sampler.SampleText()
	case "1":
		req.Kind = protocol.RequestAudio
		req.Audio = sampler.SampleAudio()
	case "2":
		req.Kind = protocol.RequestVideo
		// There is no sample video payload; a small opaque blob is enough
		// to exercise the path.
		req.Video = []byte{0x00, 0x00, 0x00, 0x18, 0x66, 0x74, 0x79, 0x70}
	default:
		return nil, false
	}
	return req, true
}

// exchange sends one request and prints its reply, skipping any pongs
// that arrive in between.
func exchange(conn *websocket.Conn, req *protocol.Request, downloads *storage.Local) error {
	data, err := req.Encode()
	if err != nil {
		return err
	}
	if err := conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
		return fmt.Errorf("send failed: %w", err)
	}

	for {
		msgType, reply, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("connection closed: %w", err)
		}
		if msgType == websocket.TextMessage {
			if string(reply) == "pong" {
				continue
			}
			fmt.Printf("server: %s\n", reply)
			continue
		}

		resp, err := protocol.DecodeResponse(reply)
		if err != nil {
			fmt.Printf("undecodable reply: %v\n", err)
			return nil
		}
		printResponse(resp, downloads)
		return nil
	}
}

func printResponse(resp *protocol.Response, downloads *storage.Local) {
	fmt.Printf("received %s kind=%s\n", resp.MessageID, resp.Kind)
	if resp.Kind == protocol.ResponseError {
		fmt.Printf("  error: %s\n", resp.ErrorMessage)
		return
	}

	fmt.Printf("  text: %s\n", resp.Text)
	if len(resp.Audio) > 0 {
		if path, err := downloads.Save(resp.MessageID.String()+".mp3", resp.Audio); err == nil {
			fmt.Printf("  audio: %s\n", path)
		} else {
			fmt.Printf("  audio: failed to save: %v\n", err)
		}
	}
	if len(resp.Image) > 0 {
		if path, err := downloads.Save(resp.MessageID.String()+".jpg", resp.Image); err == nil {
			fmt.Printf("  image: %s\n", path)
		} else {
			fmt.Printf("  image: failed to save: %v\n", err)
		}
	}
}
