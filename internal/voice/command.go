package voice

import (
	"bufio"
	"context"
	"errors"
	"os/exec"
	"strings"
	"sync"

	"github.com/iksnae/agent-chat/internal"
)

const (
	finalPrefix = "FINAL:"
	errorPrefix = "ERROR:"
)

// CommandRecognizer runs an external speech-to-text program.
//
// The command line may contain {lang}, replaced by the recognition language.
// Every stdout line is an interim transcript; a line starting with "FINAL:" is the
// final one and a line starting with "ERROR:" carries an error code such as
// "no-speech". If the program exits without a final line, the last interim
// transcript is taken as final.
type CommandRecognizer struct {
	Command string

	mu     sync.Mutex
	cancel context.CancelFunc
}

// NewCommandRecognizer creates a recognizer for the given command line
func NewCommandRecognizer(command string) *CommandRecognizer {
	return &CommandRecognizer{Command: command}
}

func (r *CommandRecognizer) Start(ctx context.Context, lang string) (<-chan Event, error) {
	fields := strings.Fields(strings.ReplaceAll(r.Command, "{lang}", lang))
	if len(fields) == 0 {
		return nil, &RecognitionError{Code: CodeNotSupported, Err: errors.New("no voice command configured")}
	}
	if _, err := exec.LookPath(fields[0]); err != nil {
		return nil, &RecognitionError{Code: CodeNotSupported, Err: err}
	}

	ctx, cancel := context.WithCancel(ctx)
	cmd := exec.CommandContext(ctx, fields[0], fields[1:]...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		cancel()
		return nil, &RecognitionError{Code: CodeAudioCapture, Err: err}
	}
	internal.LogDebug("started voice command %s", fields[0])

	r.mu.Lock()
	r.cancel = cancel
	r.mu.Unlock()

	events := make(chan Event)
	go func() {
		waited := false
		defer close(events)
		defer func() {
			if !waited {
				_ = cmd.Wait()
			}
		}()
		defer cancel()

		send := func(ev Event) bool {
			select {
			case events <- ev:
				return true
			case <-ctx.Done():
				return false
			}
		}

		last := ""
		final := false
		scanner := bufio.NewScanner(stdout)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			switch {
			case line == "":
				continue
			case strings.HasPrefix(line, finalPrefix):
				final = true
				if !send(Event{Transcript: strings.TrimSpace(strings.TrimPrefix(line, finalPrefix)), Final: true}) {
					return
				}
			case strings.HasPrefix(line, errorPrefix):
				code := strings.TrimSpace(strings.TrimPrefix(line, errorPrefix))
				final = true
				if !send(Event{Err: &RecognitionError{Code: code}}) {
					return
				}
			default:
				last = line
				if !send(Event{Transcript: line}) {
					return
				}
			}
		}

		waitErr := cmd.Wait()
		waited = true
		if final || ctx.Err() != nil {
			return
		}
		if last != "" {
			send(Event{Transcript: last, Final: true})
			return
		}
		if waitErr != nil {
			send(Event{Err: &RecognitionError{Code: CodeAudioCapture, Err: waitErr}})
		}
	}()

	return events, nil
}

func (r *CommandRecognizer) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
}
