package commands

import (
	"fmt"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/tietlabs/thapargpt/pkg/media"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with the assistant interactively",
	Long: `Start an interactive chat session.

Inside the session:
  img <path> [question]   ask about a local image
  pdf <path> [question]   ask about a local PDF
  file <path> [question]  ask about any local file
  exit                    quit`,
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, _, err := buildAssistant(ctx, cfg)
	if err != nil {
		return err
	}

	fmt.Println("ThaparGPT ready. Type 'exit' to quit.")

	rl, err := readline.New("You: ")
	if err != nil {
		return err
	}
	defer func() {
		_ = rl.Close()
	}()

	for {
		line, err := rl.Readline()
		if err != nil { // io.EOF or interrupt
			break
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.EqualFold(line, "exit") {
			break
		}

		query, attachments, err := parseInput(line)
		if err != nil {
			fmt.Println(err)
			continue
		}

		answer, err := a.Ask(ctx, query, attachments)
		if err != nil {
			fmt.Println("Error:", err)
			continue
		}
		fmt.Printf("Assistant: %s\n\n", answer)
	}
	return nil
}

// parseInput splits off an "img", "pdf" or "file" prefix and loads the
// named attachment. Plain lines come back unchanged.
func parseInput(line string) (string, []media.Attachment, error) {
	lower := strings.ToLower(line)
	var rest string
	switch {
	case strings.HasPrefix(lower, "img "):
		rest = line[4:]
	case strings.HasPrefix(lower, "pdf "):
		rest = line[4:]
	case strings.HasPrefix(lower, "file "):
		rest = line[5:]
	default:
		return line, nil, nil
	}

	path := rest
	question := ""
	if idx := strings.Index(rest, " "); idx >= 0 {
		path = rest[:idx]
		question = strings.TrimSpace(rest[idx+1:])
	}

	attachment, err := media.LoadFile(path)
	if err != nil {
		return "", nil, fmt.Errorf("could not load %s: %w", path, err)
	}
	return question, []media.Attachment{*attachment}, nil
}
