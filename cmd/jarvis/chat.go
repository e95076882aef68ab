package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leofalp/jarvis/core/orchestrator"
	"github.com/leofalp/jarvis/internal/utils"
)

const prompt = "> "

// conversation is the part of an Orchestrator the REPL drives.
type conversation interface {
	Submit(ctx context.Context, userText string) (string, error)
	Reset(ctx context.Context)
}

func runChat(cmd *cobra.Command, a *app) error {
	sessions := orchestrator.NewSessions(a.newOrchestrator)
	conv, err := sessions.Create()
	if err != nil {
		return err
	}
	a.observer.Logger().Info("session started", "session_id", conv.SessionID(), "model", a.cfg.Model)

	return repl(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), conv)
}

// repl answers one line of in per turn until EOF, "exit" or cancellation.
// "/reset" clears the conversation. A failed turn is reported and the loop
// goes on; the history it left behind stays usable.
func repl(ctx context.Context, in io.Reader, out io.Writer, conv conversation) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	for {
		fmt.Fprint(out, prompt)
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		switch strings.ToLower(line) {
		case "":
			continue
		case "exit", "quit", "/exit", "/quit":
			return nil
		case "/reset":
			conv.Reset(ctx)
			fmt.Fprintln(out, "Conversation cleared.")
			continue
		}

		answer, err := conv.Submit(ctx, line)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			var protoErr *orchestrator.CompletionProtocolError
			if errors.As(err, &protoErr) {
				detail := protoErr.Err.Error()
				if len(protoErr.Raw) > 0 {
					detail = utils.TruncateString(string(protoErr.Raw), 0)
				}
				fmt.Fprintf(out, "Error: unexpected reply from the model (%s phase): %s\n", protoErr.Phase, detail)
				continue
			}
			fmt.Fprintf(out, "Error: %v\n", err)
			continue
		}
		fmt.Fprintln(out, answer)
	}
}
