package console

import (
	"bufio"
	"context"
	"errors"
	"io"
	"log/slog"
)

// Prompt is printed before every command.
const Prompt = "encore> "

// Run reads commands from in until EOF, the quit command, or ctx is done.
// Command errors are printed and do not stop the loop.
func (p *Presenter) Run(ctx context.Context, in io.Reader) error {
	// Releases the reader goroutine when Run returns before EOF
	readCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan string)
	scanErr := make(chan error, 1)

	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-readCtx.Done():
				return
			}
		}
		scanErr <- scanner.Err()
	}()

	p.printf("%d songs, type help for commands\n", len(p.session.Songs()))
	p.printStatus()

	for {
		p.printf("%s", Prompt)

		select {
		case <-ctx.Done():
			p.printf("\n")
			return ctx.Err()

		case line, ok := <-lines:
			if !ok {
				p.printf("\n")
				select {
				case err := <-scanErr:
					return err
				default:
					return ctx.Err()
				}
			}

			err := p.Execute(line)
			if errors.Is(err, ErrQuit) {
				return nil
			}
			if err != nil {
				p.logger.Debug("command failed", slog.String("line", line), slog.Any("error", err))
				p.printf("error: %v\n", err)
			}
		}
	}
}
