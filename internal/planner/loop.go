package planner

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Stats summarises a Run.
type Stats struct {
	Received  int
	Published int
	Rejected  int
	Failed    int
}

// Run reads status lines from in and writes one JSON command per line to
// out until in is exhausted or ctx is cancelled. Blank lines are skipped.
// Invalid replies and failed exchanges are logged and counted, never
// published. A receive on compress triggers a history compression between
// lines; the session is only ever used from this goroutine.
func (p *Planner) Run(ctx context.Context, in io.Reader, out io.Writer, compress <-chan struct{}) (Stats, error) {
	var stats Stats

	scanCtx, stopScan := context.WithCancel(ctx)
	defer stopScan()
	lines, scanErr := scanLines(scanCtx, in)

	w := bufio.NewWriter(out)
	defer func() { _ = w.Flush() }()

	for {
		select {
		case <-ctx.Done():
			return stats, ctx.Err()

		case <-compress:
			if err := p.Compress(ctx); err != nil {
				p.logger.Warn("scheduled compression failed", "error", err)
			}

		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-scanErr:
					if err != nil {
						return stats, fmt.Errorf("planner: read input: %w", err)
					}
				default:
				}
				return stats, nil
			}

			status := strings.TrimSpace(line)
			if status == "" {
				continue
			}
			stats.Received++
			p.logger.Info("status received", "status", status)

			cmd, err := p.Plan(ctx, status)
			if err != nil {
				if isFatal(ctx, err) {
					return stats, ctx.Err()
				}
				var re *ReplyError
				if errors.As(err, &re) {
					stats.Rejected++
					p.logger.Error("reply is not a valid command", "error", err, "reply", re.Reply)
				} else {
					stats.Failed++
					p.logger.Error("planning exchange failed", "error", err)
				}
				continue
			}

			data, err := cmd.Marshal()
			if err != nil {
				stats.Rejected++
				p.logger.Error("command encoding failed", "error", err)
				continue
			}
			if _, err := w.Write(append(data, '\n')); err != nil {
				return stats, fmt.Errorf("planner: write command: %w", err)
			}
			if err := w.Flush(); err != nil {
				return stats, fmt.Errorf("planner: write command: %w", err)
			}
			stats.Published++
			p.logger.Info("command published", "action", cmd.Action)
		}
	}
}

// scanLines feeds the lines of in to the returned channel until in is
// exhausted or ctx is done, then closes it. A read error, if any, is
// delivered on the error channel before the close.
func scanLines(ctx context.Context, in io.Reader) (<-chan string, <-chan error) {
	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- sc.Err()
	}()
	return lines, scanErr
}
