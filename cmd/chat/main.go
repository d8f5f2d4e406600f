package main

import (
	"bufio"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/MegaGrindStone/ollamachat/internal/chat"
	"github.com/MegaGrindStone/ollamachat/internal/store"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
)

var (
	promptStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	assistantStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	faintStyle     = lipgloss.NewStyle().Faint(true)
)

func main() {
	cfgPath := flag.String("config", "", "path to config file")
	resume := flag.String("resume", "", "conversation ID to resume")
	list := flag.Bool("list", false, "list stored conversations and exit")
	verbose := flag.Bool("verbose", false, "enable debug logging")
	flag.Parse()

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if err := run(*cfgPath, *resume, *list, logger); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render(err.Error()))
		os.Exit(1)
	}
}

func run(cfgPath, resume string, list bool, logger *slog.Logger) error {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return err
	}

	dbPath, err := cfg.historyDBPath()
	if err != nil {
		return err
	}
	conversations, err := store.NewBolt(dbPath)
	if err != nil {
		return err
	}
	defer conversations.Close()

	if list {
		ids, err := conversations.List()
		if err != nil {
			return err
		}
		for _, id := range ids {
			fmt.Println(id)
		}
		return nil
	}

	opts := cfg.chatOptions()
	opts.Logger = logger
	ctx := chat.New(opts)
	defer ctx.Close()

	conversationID := resume
	if conversationID == "" {
		conversationID = uuid.New().String()
	} else {
		messages, err := conversations.Load(conversationID)
		if err != nil {
			return fmt.Errorf("failed to resume conversation %s: %w", conversationID, err)
		}
		for _, msg := range messages {
			ctx.AddMessage(msg.Role, msg.Content)
		}
		fmt.Println(faintStyle.Render(
			fmt.Sprintf("Resumed conversation %s (%d messages)", conversationID, len(messages))))
	}

	fmt.Println(faintStyle.Render("Commands: /history, /clear, /quit"))

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print(promptStyle.Render("> "))
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())

		switch {
		case line == "":
			continue
		case line == "/quit":
		case line == "/clear":
			ctx.ClearHistory()
			fmt.Println(faintStyle.Render("History cleared"))
			continue
		case line == "/history":
			printHistory(ctx)
			continue
		default:
			if _, err := ctx.Send(line, func(tok string) {
				fmt.Print(assistantStyle.Render(tok))
			}); err != nil {
				fmt.Println(errorStyle.Render(err.Error()))
				continue
			}
			fmt.Println()
			continue
		}
		break
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading input: %w", err)
	}

	if ctx.HistoryLen() == 0 {
		return nil
	}
	if err := conversations.Save(conversationID, ctx.History()); err != nil {
		return fmt.Errorf("failed to save conversation: %w", err)
	}
	fmt.Println(faintStyle.Render("Saved conversation " + conversationID))

	return nil
}

func printHistory(ctx *chat.Context) {
	for i, msg := range ctx.History() {
		fmt.Printf("%d. [%s]: %s\n", i+1, msg.Role, truncate(msg.Content, 50))
	}
}

// truncate shortens s to at most n runes, appending an ellipsis when content is
// cut. Truncation happens on rune boundaries so multi-byte characters are never
// split.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
