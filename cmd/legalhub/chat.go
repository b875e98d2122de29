package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sangwajesly/legalhub-backend-sub000/internal/rag"
	"github.com/sangwajesly/legalhub-backend-sub000/internal/tui"
)

var (
	chatUserID    string
	chatSessionID string
	askNoRAG      bool
	askStream     bool
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Open the interactive chat TUI",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := loadApp()
		if err != nil {
			return err
		}
		defer app.Close()

		conv, err := app.Conversation()
		if err != nil {
			return err
		}

		sessionID := chatSessionID
		if sessionID == "" {
			session, err := app.Sessions.CreateSession(chatUserID, "TUI chat")
			if err != nil {
				return fmt.Errorf("create session: %w", err)
			}
			sessionID = session.ID
		}

		return tui.Run(tui.ModelConfig{
			Conversation: conv,
			SessionID:    sessionID,
			UserID:       chatUserID,
		})
	},
}

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a single question and print the answer",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := loadApp()
		if err != nil {
			return err
		}
		defer app.Close()

		conv, err := app.Conversation()
		if err != nil {
			return err
		}

		session, err := app.Sessions.CreateSession(chatUserID, "CLI question")
		if err != nil {
			return fmt.Errorf("create session: %w", err)
		}

		req := &rag.ChatRequest{
			SessionID:  session.ID,
			UserID:     chatUserID,
			Message:    strings.Join(args, " "),
			DisableRAG: askNoRAG,
		}

		ctx := context.Background()
		if askStream {
			fragments, err := conv.GenerateResponseStream(ctx, req)
			if err != nil {
				return err
			}
			for delta := range fragments {
				fmt.Print(delta)
			}
			fmt.Println()
			return nil
		}

		reply, err := conv.GenerateResponse(ctx, req)
		if err != nil {
			return err
		}
		fmt.Println(reply)
		return nil
	},
}

func init() {
	for _, cmd := range []*cobra.Command{chatCmd, askCmd} {
		cmd.Flags().StringVar(&chatUserID, "user", defaultUserID(), "user id owning the session")
	}
	chatCmd.Flags().StringVar(&chatSessionID, "session", "", "resume an existing session id")
	askCmd.Flags().BoolVar(&askNoRAG, "no-rag", false, "skip document retrieval")
	askCmd.Flags().BoolVar(&askStream, "stream", false, "stream the answer as it is generated")
}

func defaultUserID() string {
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	return "local"
}
