package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/flemzord/sovereign/internal/study"
	"github.com/spf13/cobra"
)

func chatCmd() *cobra.Command {
	var (
		modeFlag  string
		topic     string
		resumeID  string
		skipCheck bool
	)

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive study session",
		Long: `Start an interactive study session.

Modes: tutor (Socratic questions), exam (graded questions), free (open chat).
Without --mode a menu is shown. Commands inside the session:
  /undo             remove the last exchange
  /compress         summarize the history into one memory turn
  /wipe             clear the history, keep the persona
  /persona <text>   switch persona and reset the history
  /history          list the current turns
  /quit, /exit      leave`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			rt, err := buildRuntime(cmd)
			if err != nil {
				return err
			}
			defer closeRuntime(rt)

			if err := rt.StartGateway(ctx); err != nil {
				return err
			}

			if resumeID != "" {
				s, err := rt.ResumeSession(resumeID)
				if err != nil {
					return err
				}
				mode := study.ModeFree
				if modeFlag != "" {
					if mode, err = study.ParseMode(modeFlag); err != nil {
						return err
					}
				}
				fmt.Fprintf(out, "Resumed session %s (%d turns).\n", s.ID(), s.Len())
				summary, err := rt.Store.GetSummary(s.ID())
				if err != nil {
					rt.Logger.Warn("summary lookup failed", "session", s.ID(), "error", err)
				} else if summary != "" {
					fmt.Fprintf(out, "Last summary: %s\n", summary)
				}
				return study.NewREPL(s, mode, topic, cmd.InOrStdin(), out, rt.Logger).Run(ctx, true)
			}

			s, err := rt.NewSession("")
			if err != nil {
				return err
			}

			if !skipCheck {
				fmt.Fprintln(out, "Connecting to the model...")
				if _, err := study.CheckConnection(ctx, s); err != nil {
					fmt.Fprintln(out, study.Describe(err))
					return fmt.Errorf("connection check failed: %w", err)
				}
				fmt.Fprintln(out, "System online and ready.")
			}

			mode, chosen, err := selectMode(modeFlag, topic)
			if err != nil {
				return err
			}

			if rt.Store != nil {
				fmt.Fprintf(out, "Session %s (resume with --resume).\n", s.ID())
			}
			return study.NewREPL(s, mode, chosen, cmd.InOrStdin(), out, rt.Logger).Run(ctx, false)
		},
	}

	cmd.Flags().StringVarP(&modeFlag, "mode", "m", "", "Study mode: tutor, exam or free")
	cmd.Flags().StringVarP(&topic, "topic", "t", "", "Topic for tutor and exam modes")
	cmd.Flags().StringVar(&resumeID, "resume", "", "Resume a stored session by ID")
	cmd.Flags().BoolVar(&skipCheck, "skip-check", false, "Skip the start-up connection check")
	return cmd
}

// selectMode resolves the mode and topic from flags, asking with a form
// for whatever is missing.
func selectMode(modeFlag, topic string) (study.Mode, string, error) {
	var mode study.Mode
	if modeFlag != "" {
		m, err := study.ParseMode(modeFlag)
		if err != nil {
			return "", "", err
		}
		mode = m
		if !mode.NeedsTopic() || topic != "" {
			return mode, topic, nil
		}
	}

	choice := string(mode)
	if choice == "" {
		choice = string(study.ModeTutor)
	}
	options := make([]huh.Option[string], 0, len(study.Modes()))
	for _, m := range study.Modes() {
		options = append(options, huh.NewOption(m.Label(), string(m)))
	}

	var groups []*huh.Group
	if mode == "" {
		groups = append(groups, huh.NewGroup(
			huh.NewSelect[string]().
				Title("Select mode").
				Options(options...).
				Value(&choice),
		))
	}
	groups = append(groups, huh.NewGroup(
		huh.NewInput().
			Title("Topic").
			Placeholder("Op-Amps, Calculus, ...").
			Value(&topic).
			Validate(func(s string) error {
				if strings.TrimSpace(s) == "" {
					return errors.New("a topic is required")
				}
				return nil
			}),
	).WithHideFunc(func() bool {
		m, err := study.ParseMode(choice)
		return err != nil || !m.NeedsTopic()
	}))

	if err := huh.NewForm(groups...).Run(); err != nil {
		return "", "", err
	}

	mode, err := study.ParseMode(choice)
	if err != nil {
		return "", "", err
	}
	return mode, strings.TrimSpace(topic), nil
}
