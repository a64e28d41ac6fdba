package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/aidevedu/chatcore/pkg/chat"
)

func chatCmd() *cobra.Command {
	var metricsPort int
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive chat session",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signalContext()
			defer stop()

			svc, store, err := buildService(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			if metricsPort > 0 {
				srv := startObservability(metricsPort, store, svc)
				defer func() {
					sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					_ = srv.Shutdown(sctx)
					cancel()
				}()
			}

			// Any stream left dangling by a previous crash is settled
			// before the prompt appears.
			store.ClearAllStreamingStates()

			line := liner.NewLiner()
			defer line.Close()
			line.SetCtrlCAborts(true)

			historyFile := filepath.Join(filepath.Dir(configFile), "history")
			if f, err := os.Open(historyFile); err == nil {
				line.ReadHistory(f)
				f.Close()
			}
			defer func() {
				if f, err := os.Create(historyFile); err == nil {
					line.WriteHistory(f)
					f.Close()
				}
			}()

			printPage(store)

			for {
				input, err := line.Prompt("you> ")
				if err != nil {
					if errors.Is(err, liner.ErrPromptAborted) {
						fmt.Println("bye")
						return nil
					}
					return err
				}
				input = strings.TrimSpace(input)
				if input == "" {
					continue
				}
				line.AppendHistory(input)

				if strings.HasPrefix(input, "/") {
					if quit := runSlashCommand(svc, store, input); quit {
						return nil
					}
					continue
				}

				if err := streamTurn(cmd, svc, input); err != nil {
					fmt.Fprintf(os.Stderr, "send failed: %v\n", err)
				}
			}
		},
	}
	cmd.Flags().IntVar(&metricsPort, "metrics-port", 0, "serve /health and /metrics on this port (0 disables)")
	return cmd
}

// streamTurn sends one message and prints the reply as it streams.
func streamTurn(cmd *cobra.Command, svc *chat.Service, input string) error {
	if chat.IsNavigationRequest(input) {
		fmt.Println("(looking for a page? try /resources after the reply)")
	}

	relevant := svc.RelevantContent(cmd.Context(), input)

	printed := 0
	fmt.Print("assistant> ")
	_, err := svc.SendStreamingMessage(cmd.Context(), input, nil, relevant, func(m chat.Message) {
		if len(m.Content) > printed {
			fmt.Print(m.Content[printed:])
			printed = len(m.Content)
		}
	})
	fmt.Println()

	for _, q := range svc.FollowUps() {
		fmt.Println("  ?", q)
	}
	return err
}

// runSlashCommand handles REPL commands. It returns true to quit.
func runSlashCommand(svc *chat.Service, store *chat.Store, input string) bool {
	fields := strings.Fields(input)
	arg := ""
	if len(fields) > 1 {
		arg = strings.Join(fields[1:], " ")
	}

	switch fields[0] {
	case "/quit", "/exit":
		return true
	case "/new":
		store.CreateSession(arg)
		printPage(store)
	case "/sessions":
		for cat, sessions := range store.SessionsByCategory() {
			fmt.Println(cat + ":")
			for _, s := range sessions {
				marker := " "
				if s.ID == store.CurrentSessionID() {
					marker = "*"
				}
				fmt.Printf("  %s %s  %s\n", marker, s.ID, s.Title)
			}
		}
	case "/switch":
		if !store.SetCurrentSession(arg) {
			fmt.Println("no such session:", arg)
			break
		}
		printPage(store)
	case "/delete":
		if !store.DeleteSession(arg) {
			fmt.Println("no such session:", arg)
		}
	case "/rename":
		if !store.RenameSession(store.CurrentSessionID(), arg) {
			fmt.Println("usage: /rename <title>")
		}
	case "/model":
		if arg == "" {
			for _, m := range store.Models() {
				marker := " "
				if m.ID == store.SelectedModel() {
					marker = "*"
				}
				fmt.Printf("  %s %s  %s\n", marker, m.ID, m.Name)
			}
			break
		}
		if !store.SetModel(arg) {
			fmt.Println("unknown model:", arg)
		}
	case "/reset":
		store.ResetChat()
		printPage(store)
	case "/prev":
		if !store.PreviousPage() {
			fmt.Println("already at the first page")
			break
		}
		printPage(store)
	case "/next":
		if !store.NextPage() {
			fmt.Println("already at the last page")
			break
		}
		printPage(store)
	case "/resources":
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		suggestions := svc.ResourceRecommendations(ctx)
		cancel()
		if len(suggestions) == 0 {
			fmt.Println("no suggestions right now")
			break
		}
		for _, s := range suggestions {
			fmt.Printf("  %s (%s)\n    %s\n", s.Title, s.Path, s.Description)
		}
	case "/help":
		fmt.Println("commands: /new [topic], /sessions, /switch <id>, /delete <id>, /rename <title>, /model [id], /reset, /prev, /next, /resources, /quit")
	default:
		fmt.Println("unknown command; try /help")
	}
	return false
}

func printPage(store *chat.Store) {
	fmt.Printf("-- page %d/%d --\n", store.PageIndex()+1, store.PageCount())
	for _, m := range store.CurrentPage() {
		if m.Role == chat.RoleSystem {
			continue
		}
		fmt.Printf("%s> %s\n", m.Role, m.Content)
	}
}
