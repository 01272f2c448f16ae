package planner

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/kaptinlin/jsonrepair"
	"github.com/tidwall/gjson"
)

// ErrInvalidCommand indicates a reply that cannot be turned into a Command.
var ErrInvalidCommand = errors.New("planner: invalid command")

// Command is the next high-level action chosen by the model.
type Command struct {
	Action     string `json:"action"`
	Parameters []any  `json:"parameters"`
	Reasoning  string `json:"reasoning"`
}

// Parse extracts a Command from a model reply. Markdown code fences and
// text around the outermost JSON object are dropped, and malformed JSON is
// repaired before validation. action must be a non-empty string,
// parameters an array (absent means empty) and reasoning a string when
// present.
func Parse(reply string) (Command, error) {
	content := stripFences(reply)
	if content == "" {
		return Command{}, fmt.Errorf("%w: empty reply", ErrInvalidCommand)
	}

	if !gjson.Valid(content) {
		repaired, err := jsonrepair.JSONRepair(content)
		if err != nil {
			return Command{}, fmt.Errorf("%w: not JSON and repair failed: %w", ErrInvalidCommand, err)
		}
		content = repaired
	}

	if err := validate(content); err != nil {
		return Command{}, err
	}

	var cmd Command
	if err := json.Unmarshal([]byte(content), &cmd); err != nil {
		return Command{}, fmt.Errorf("%w: %w", ErrInvalidCommand, err)
	}
	if cmd.Parameters == nil {
		cmd.Parameters = []any{}
	}
	return cmd, nil
}

// Marshal returns the single-line JSON form of c.
func (c Command) Marshal() ([]byte, error) {
	if c.Parameters == nil {
		c.Parameters = []any{}
	}
	return json.Marshal(c)
}

func validate(content string) error {
	root := gjson.Parse(content)
	if !root.IsObject() {
		return fmt.Errorf("%w: reply is not a JSON object", ErrInvalidCommand)
	}

	var errs []error
	action := root.Get("action")
	if action.Type != gjson.String || strings.TrimSpace(action.Str) == "" {
		errs = append(errs, errors.New("action must be a non-empty string"))
	}
	if p := root.Get("parameters"); p.Exists() && !p.IsArray() && p.Type != gjson.Null {
		errs = append(errs, errors.New("parameters must be a list"))
	}
	if r := root.Get("reasoning"); r.Exists() && r.Type != gjson.String && r.Type != gjson.Null {
		errs = append(errs, errors.New("reasoning must be a string"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidCommand, errors.Join(errs...))
	}
	return nil
}

// stripFences removes ``` and ```json fences and anything outside the
// outermost braces.
func stripFences(s string) string {
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	s = strings.TrimSpace(s)

	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start >= 0 && end > start {
		s = s[start : end+1]
	} else if start > 0 {
		s = s[start:]
	}
	return s
}
