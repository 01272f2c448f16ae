// Package study implements the interactive study companion: a mode
// (Socratic tutor, exam simulator or free chat) sets the persona and the
// sampling temperature, and a line-oriented REPL drives one session with
// a handful of slash commands.
package study

import (
	"fmt"
	"strings"
)

// Mode selects persona and temperature for a study session.
type Mode string

// Supported modes.
const (
	ModeTutor Mode = "tutor"
	ModeExam  Mode = "exam"
	ModeFree  Mode = "free"
)

// Sampling temperatures per mode.
const (
	TutorTemperature = 0.7
	ExamTemperature  = 0.2
)

// Modes lists the modes in menu order.
func Modes() []Mode {
	return []Mode{ModeTutor, ModeExam, ModeFree}
}

// ParseMode accepts a mode name or its menu number.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "tutor", "1":
		return ModeTutor, nil
	case "exam", "2":
		return ModeExam, nil
	case "free", "3":
		return ModeFree, nil
	default:
		return "", fmt.Errorf("study: unknown mode %q (want tutor, exam or free)", s)
	}
}

// Label is the menu text for m.
func (m Mode) Label() string {
	switch m {
	case ModeTutor:
		return "Socratic Tutor (learn by answering)"
	case ModeExam:
		return "Exam Simulator (test your knowledge)"
	default:
		return "Free Chat (just talk)"
	}
}

// NeedsTopic reports whether m asks for a topic.
func (m Mode) NeedsTopic() bool {
	return m == ModeTutor || m == ModeExam
}

// Persona returns the system prompt for m on topic.
func (m Mode) Persona(topic string) string {
	switch m {
	case ModeTutor:
		return fmt.Sprintf("You are a Socratic Tutor teaching %s. "+
			"Never explain the concept directly. "+
			"Ask one simple question at a time to lead the user to the answer. "+
			"If they are wrong, give a hint.", topic)
	case ModeExam:
		return fmt.Sprintf("You are a strict Examiner for %s. "+
			"Ask a hard technical question. Wait for the answer. "+
			"Then grade it 0-10, explain the correction, and ask the next question.", topic)
	default:
		return "You are a helpful, sarcastic engineering assistant."
	}
}

// Temperature is the sampling temperature used for every exchange in m.
func (m Mode) Temperature() float64 {
	if m == ModeExam {
		return ExamTemperature
	}
	return TutorTemperature
}

// Banner is printed when the session starts.
func (m Mode) Banner(topic string) string {
	switch m {
	case ModeTutor:
		return fmt.Sprintf("--- SOCRATIC SESSION: %s ---", topic)
	case ModeExam:
		return fmt.Sprintf("--- EXAM SESSION: %s ---", topic)
	default:
		return "--- FREE CHAT ---"
	}
}

// Opening is the first line shown as the assistant's, without an
// exchange. Empty for modes that open with a model reply instead.
func (m Mode) Opening(topic string) string {
	if m == ModeTutor {
		return fmt.Sprintf("Let's begin. What do you already know about %s?", topic)
	}
	return ""
}

// FirstPrompt is sent on the user's behalf when the session starts.
// Only the exam simulator has one.
func (m Mode) FirstPrompt(topic string) string {
	if m == ModeExam {
		return fmt.Sprintf("Ask me the first question about %s.", topic)
	}
	return ""
}
