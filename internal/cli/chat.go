package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/billie-coop/mark/internal/chat"
)

const chatPrompt = "mark> "

func newChatCommand(rt *state) *cobra.Command {
	var in, out string

	cmd := &cobra.Command{
		Use:     "chat",
		Short:   "Talk to the assistant about an analyzed project",
		Example: `  mark chat --input ./projects --output-dir ./results`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runChatREPL(cmd, rt, in, out)
		},
	}
	cmd.Flags().StringVarP(&in, "input", "i", "", "folder holding the analyzed projects")
	cmd.Flags().StringVarP(&out, "output-dir", "d", "", "folder holding the analysis results")
	_ = cmd.MarkFlagRequired("input")
	_ = cmd.MarkFlagRequired("output-dir")
	return cmd
}

func runChatREPL(cmd *cobra.Command, rt *state, in, out string) error {
	ctx := cmd.Context()
	s := newChatSession(rt.app.Chat, cmd.OutOrStdout(), cmd.ErrOrStderr())
	rt.app.Chat.SetProjectPaths(in, out)

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          chatPrompt,
		HistoryFile:     chatHistoryFile(),
		AutoComplete:    chatCompleter(),
		InterruptPrompt: "^C",
		EOFPrompt:       "/quit",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize chat: %w", err)
	}
	defer func() { _ = rl.Close() }()

	s.welcome(ctx)

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if s.handle(ctx, line) {
			break
		}
	}
	return nil
}

func chatHistoryFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".mark_chat_history")
}

func chatCompleter() *readline.PrefixCompleter {
	return readline.NewPrefixCompleter(
		readline.PcItem("/explain"),
		readline.PcItem("/summary"),
		readline.PcItem("/clear"),
		readline.PcItem("/status"),
		readline.PcItem("/help"),
		readline.PcItem("/quit"),
	)
}

// chatSession turns REPL lines into assistant calls.
type chatSession struct {
	assistant *chat.Assistant
	out       io.Writer
	errOut    io.Writer
	width     int
}

func newChatSession(a *chat.Assistant, out, errOut io.Writer) *chatSession {
	return &chatSession{assistant: a, out: out, errOut: errOut, width: terminalWidth(out, 80)}
}

func (s *chatSession) welcome(ctx context.Context) {
	s.print(chat.WelcomeMessage)
	_, _ = fmt.Fprintln(s.out, "Type /help for commands, /quit to exit")
	if ok, err := s.assistant.CheckStatus(ctx); err != nil || !ok {
		_, _ = fmt.Fprintln(s.errOut, "Warning: LLM service is not available")
	}
	_, _ = fmt.Fprintln(s.out)
}

// handle runs one input line and reports whether the session should end.
func (s *chatSession) handle(ctx context.Context, line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}

	switch strings.ToLower(strings.Fields(line)[0]) {
	case "/quit", "/exit":
		return true
	case "/help":
		printChatHelp(s.out)
	case "/clear":
		s.assistant.Clear(ctx)
		_, _ = fmt.Fprintln(s.out, "Conversation cleared.")
	case "/status":
		ok, err := s.assistant.CheckStatus(ctx)
		switch {
		case err != nil:
			s.fail(err)
		case ok:
			_, _ = fmt.Fprintln(s.out, "LLM service is available")
		default:
			_, _ = fmt.Fprintln(s.out, "LLM service is not available")
		}
	case "/explain":
		_, _ = fmt.Fprintln(s.out, chat.ExplainingNotice)
		s.reply(s.assistant.Explain(ctx))
	case "/summary":
		_, _ = fmt.Fprintln(s.out, chat.SummarizeNotice)
		s.reply(s.assistant.Summarize(ctx))
	default:
		if strings.HasPrefix(line, "/") {
			_, _ = fmt.Fprintf(s.errOut, "Unknown command: %s (type /help for commands)\n", line)
			return false
		}
		s.reply(s.assistant.Ask(ctx, line))
	}
	return false
}

func (s *chatSession) reply(answer string, err error) {
	if err != nil {
		s.fail(err)
		return
	}
	s.print(answer)
}

func (s *chatSession) print(content string) {
	_, _ = fmt.Fprintln(s.out, strings.TrimRight(chat.Render(content, s.width), "\n"))
}

func (s *chatSession) fail(err error) {
	_, _ = fmt.Fprintf(s.errOut, "Error: %v\n", err)
}

func printChatHelp(w io.Writer) {
	help := `Commands:
  /explain   Explain the analysis results
  /summary   Summarize the analyzed project
  /clear     Start a new conversation
  /status    Check the LLM service
  /help      Show this help
  /quit      Leave the chat

Anything else is sent to the assistant as a question.`
	_, _ = fmt.Fprintln(w, help)
}
