// Command peer plays through the relay from a terminal.
//
//	move <0-8>
//	chat <parity|crc|hamming|checksum> <text>
//	surrender
//	restart
//	quit
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rocketscienceinc/tictactoe-relay/internal/codec"
	"github.com/rocketscienceinc/tictactoe-relay/internal/config"
	"github.com/rocketscienceinc/tictactoe-relay/internal/message"
	"github.com/rocketscienceinc/tictactoe-relay/internal/peer"
	"github.com/rocketscienceinc/tictactoe-relay/internal/protocol"
)

var errUsage = errors.New("usage: move <0-8> | chat <method> <text> | surrender | restart | quit")

func main() {
	url := flag.String("url", "ws://localhost:5000/ws", "relay websocket url")
	logLevel := flag.String("log-level", "warn", "debug, info, warn or error")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: config.ParseLogLevel(*logLevel)}))

	if err := run(logger, *url); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger, url string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := peer.Dial(ctx, logger, url, message.Default())
	if err != nil {
		return err
	}
	defer client.Close()

	go printEvents(client)

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "quit" {
			return nil
		}

		if err = execute(client, line); err != nil {
			fmt.Println("!", err)
		}
	}

	return scanner.Err()
}

func execute(client *peer.Client, line string) error {
	command, rest, _ := strings.Cut(line, " ")

	switch command {
	case "move":
		position, err := strconv.Atoi(strings.TrimSpace(rest))
		if err != nil {
			return errUsage
		}

		encoded, err := client.SendMove(position, client.Symbol())
		if err != nil {
			return err
		}

		fmt.Printf("> move %d as %s\n", position, encoded.FullData)
	case "chat":
		rawMethod, text, ok := strings.Cut(rest, " ")
		if !ok {
			return errUsage
		}

		method, err := codec.ParseMethod(rawMethod)
		if err != nil {
			return err
		}

		encoded, err := client.SendChat(text, method)
		if err != nil {
			return err
		}

		fmt.Printf("> chat %s as %s\n", method, encoded.EncodedData)
	case "surrender":
		return client.Surrender()
	case "restart":
		return client.VoteRestart()
	default:
		return errUsage
	}

	return nil
}

func printEvents(client *peer.Client) {
	for {
		event, err := client.ReadEvent()
		if err != nil {
			fmt.Println("! connection lost:", err)
			os.Exit(1)
		}

		switch event.Type {
		case protocol.TypeAssign:
			fmt.Println("< you play", event.Assign.Symbol)
		case protocol.TypeGameStart:
			fmt.Println("< round started,", event.GameStart.Current, "to move")
			printBoard(event.GameStart.Board)
		case protocol.TypeMoveMade:
			made := event.MoveMade
			if made.Modified {
				fmt.Printf("< %s played %d (%s by the relay)\n", made.Symbol, made.Position, made.ModType)
			} else {
				fmt.Printf("< %s played %d\n", made.Symbol, made.Position)
			}
		case protocol.TypeTurn:
			fmt.Println("<", event.Turn.Current, "to move")
		case protocol.TypeChatMsg:
			decoded := event.Decoded
			fmt.Printf("< %s says %q (valid=%t detected=%t corrected=%t)\n",
				event.Chat.From, decoded.DecodedText, decoded.Valid, decoded.ErrorsDetected, decoded.ErrorsCorrected)
			for _, detail := range decoded.ErrorDetails {
				fmt.Println("   ", detail)
			}
		case protocol.TypeRoundOver:
			fmt.Println("<", event.RoundOver.Reason)
		case protocol.TypeRestartVote:
			fmt.Println("<", event.RestartVote.Message)
		case protocol.TypeServerRestart, protocol.TypeServerEnd:
			fmt.Println("< relay:", event.Type, event.Notice.Note)
		case protocol.TypeError:
			fmt.Println("! relay:", event.Error.Error)
		}
	}
}

func printBoard(board [9]string) {
	for row := range 3 {
		cells := make([]string, 3)
		for col := range 3 {
			cells[col] = board[row*3+col]
			if cells[col] == "" {
				cells[col] = strconv.Itoa(row*3 + col)
			}
		}
		fmt.Println("   " + strings.Join(cells, " | "))
	}
}
