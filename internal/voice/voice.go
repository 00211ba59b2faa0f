// Package voice captures a spoken message through a speech recognizer.
package voice

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/iksnae/agent-chat/internal"
)

// DefaultTimeout is how long Capture waits without any recognizer activity
const DefaultTimeout = 3 * time.Second

// ErrNoSpeech is returned when no final transcript arrives in time
var ErrNoSpeech = &RecognitionError{Code: CodeNoSpeech}

// Recognizer error codes
const (
	CodeNoSpeech     = "no-speech"
	CodeAudioCapture = "audio-capture"
	CodeNotAllowed   = "not-allowed"
	CodeNetwork      = "network"
	CodeNotSupported = "not-supported"
)

// Event is one recognizer update: an interim or final transcript, or an error
type Event struct {
	Transcript string
	Final      bool
	Err        error
}

// Recognizer is a speech-to-text source. Start begins listening; the returned
// channel is closed when recognition ends. Stop ends recognition early.
type Recognizer interface {
	Start(ctx context.Context, lang string) (<-chan Event, error)
	Stop()
}

// RecognitionError is a recognizer failure identified by code
type RecognitionError struct {
	Code string
	Err  error
}

func (e *RecognitionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("speech recognition %s: %v", e.Code, e.Err)
	}
	return "speech recognition " + e.Code
}

func (e *RecognitionError) Unwrap() error {
	return e.Err
}

// Is matches recognition errors by code
func (e *RecognitionError) Is(target error) bool {
	var t *RecognitionError
	return errors.As(target, &t) && t.Code == e.Code
}

// Capture listens until a final transcript arrives and returns it
func Capture(ctx context.Context, rec Recognizer, lang string, timeout time.Duration) (string, error) {
	return CaptureInterim(ctx, rec, lang, timeout, nil)
}

// CaptureInterim is Capture with a callback for interim transcripts.
// Each event restarts the inactivity timer; when it fires the recognizer is stopped and ErrNoSpeech returned.
func CaptureInterim(ctx context.Context, rec Recognizer, lang string, timeout time.Duration, onInterim func(string)) (string, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	events, err := rec.Start(ctx, lang)
	if err != nil {
		return "", err
	}
	defer rec.Stop()
	internal.LogDebug("voice capture started (%s)", lang)

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-timer.C:
			internal.LogDebug("voice capture timed out after %s", timeout)
			return "", ErrNoSpeech
		case ev, ok := <-events:
			if !ok {
				return "", ErrNoSpeech
			}
			if ev.Err != nil {
				return "", ev.Err
			}
			if ev.Final {
				text := strings.TrimSpace(ev.Transcript)
				if text == "" {
					return "", ErrNoSpeech
				}
				return text, nil
			}
			if onInterim != nil {
				onInterim(ev.Transcript)
			}
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(timeout)
		}
	}
}

// IsFrench reports whether status text for lang is shown in French
func IsFrench(lang string) bool {
	return strings.HasPrefix(strings.ToLower(lang), "fr")
}

// ErrorMessage turns a capture error into the status line shown to the user
func ErrorMessage(err error, lang string) string {
	var rerr *RecognitionError
	code := ""
	if errors.As(err, &rerr) {
		code = rerr.Code
	}

	if IsFrench(lang) {
		switch code {
		case CodeNoSpeech:
			return "Aucune parole détectée"
		case CodeAudioCapture:
			return "Microphone non disponible"
		case CodeNotAllowed:
			return "Permission microphone refusée"
		case CodeNetwork:
			return "Erreur réseau"
		case CodeNotSupported:
			return "Reconnaissance vocale non supportée"
		case "":
			return fmt.Sprintf("Erreur vocale: %v", err)
		}
		return "Erreur vocale: " + code
	}

	switch code {
	case CodeNoSpeech:
		return "No speech detected"
	case CodeAudioCapture:
		return "Microphone not available"
	case CodeNotAllowed:
		return "Microphone permission denied"
	case CodeNetwork:
		return "Network error"
	case CodeNotSupported:
		return "Speech recognition not supported"
	case "":
		return fmt.Sprintf("Voice error: %v", err)
	}
	return "Voice error: " + code
}

// ListeningMessage is the status line shown while recording
func ListeningMessage(lang string) string {
	if IsFrench(lang) {
		return "🎤 Écoute... (FR)"
	}
	return "🎤 Listening... (EN)"
}

// AddedMessage is the status line shown once a transcript was added to the input
func AddedMessage(lang string) string {
	if IsFrench(lang) {
		return "✓ Entrée vocale ajoutée"
	}
	return "✓ Voice input added"
}
