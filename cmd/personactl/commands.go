package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"persona-service/internal/app"
	"persona-service/internal/dashboard"
	"persona-service/internal/models"
	"persona-service/internal/personaid"
)

func loaded(cmd *cobra.Command, a *app.App) error {
	_, err := a.Service.Reload(cmd.Context())
	return err
}

func newPersonasCmd(current func() *app.App) *cobra.Command {
	var f dashboard.PersonaFilter

	cmd := &cobra.Command{
		Use:   "personas",
		Short: "List scammer profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := current()
			if err := loaded(cmd, a); err != nil {
				return err
			}
			personas, err := a.Service.Personas(f)
			if err != nil {
				return err
			}
			return printJSON(cmd, personas)
		},
	}

	cmd.Flags().StringVarP(&f.Query, "query", "q", "", "free-text filter")
	cmd.Flags().StringVar(&f.Type, "type", "", "exact scam type")
	cmd.Flags().StringVar(&f.Platform, "platform", "", "platform")
	cmd.Flags().Float64Var(&f.MinRisk, "min-risk", 0, "minimum risk score")
	cmd.Flags().Float64Var(&f.MaxRisk, "max-risk", 0, "maximum risk score (0 for no limit)")
	return cmd
}

func newPersonaCmd(current func() *app.App) *cobra.Command {
	var withAnalysis bool

	cmd := &cobra.Command{
		Use:   "persona <id>",
		Short: "Show one profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := current()
			if err := loaded(cmd, a); err != nil {
				return err
			}
			if withAnalysis {
				analysis, err := a.Service.PersonaAnalysis(args[0])
				if err != nil {
					return err
				}
				return printJSON(cmd, analysis)
			}
			persona, err := a.Service.Persona(args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd, persona)
		},
	}

	cmd.Flags().BoolVar(&withAnalysis, "analysis", false, "print the analysis of the persona's messages instead")
	return cmd
}

func newConversationsCmd(current func() *app.App) *cobra.Command {
	var f dashboard.ConversationFilter

	cmd := &cobra.Command{
		Use:   "conversations [id]",
		Short: "List conversations, or analyze one",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := current()
			if err := loaded(cmd, a); err != nil {
				return err
			}
			if len(args) == 1 {
				analysis, err := a.Service.ConversationAnalysis(args[0])
				if err != nil {
					return err
				}
				return printJSON(cmd, analysis)
			}
			conversations, err := a.Service.Conversations(f)
			if err != nil {
				return err
			}
			return printJSON(cmd, conversations)
		},
	}

	cmd.Flags().StringVarP(&f.Query, "query", "q", "", "free-text filter")
	cmd.Flags().StringVar(&f.Platform, "platform", "", "platform")
	cmd.Flags().StringVar(&f.Outcome, "outcome", "", "outcome")
	return cmd
}

func newAnalyzeCmd(current func() *app.App) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze a JSON array of messages from a file or stdin",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var r io.Reader = cmd.InOrStdin()
			if file != "" && file != "-" {
				fh, err := os.Open(file)
				if err != nil {
					return fmt.Errorf("failed to open messages: %w", err)
				}
				defer fh.Close()
				r = fh
			}

			var messages []models.Message
			if err := json.NewDecoder(r).Decode(&messages); err != nil {
				return fmt.Errorf("failed to decode messages: %w", err)
			}
			return printJSON(cmd, current().Service.Analyze(messages))
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "-", "messages file")
	return cmd
}

func newClassifyCmd(current func() *app.App) *cobra.Command {
	var (
		keywords    []string
		description string
	)

	cmd := &cobra.Command{
		Use:   "classify [message...]",
		Short: "Classify keywords, a description and message texts",
		RunE: func(cmd *cobra.Command, args []string) error {
			label := current().Service.Classify(keywords, description, args)
			_, err := fmt.Fprintln(cmd.OutOrStdout(), label)
			return err
		},
	}

	cmd.Flags().StringSliceVarP(&keywords, "keywords", "k", nil, "comma separated keywords")
	cmd.Flags().StringVarP(&description, "description", "d", "", "free-text description")
	return cmd
}

func newDashboardCmd(current func() *app.App) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Print dashboard aggregates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := current()
			if err := loaded(cmd, a); err != nil {
				return err
			}
			stats, err := a.Service.Dashboard()
			if err != nil {
				return err
			}
			return printJSON(cmd, stats)
		},
	}
}

func newAskCmd(current func() *app.App) *cobra.Command {
	var personaID string

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask the analyst bot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := current()
			if err := loaded(cmd, a); err != nil {
				return err
			}
			reply, err := a.Service.Ask(cmd.Context(), args[0], personaID)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), reply.Response)
			return err
		},
	}

	cmd.Flags().StringVarP(&personaID, "persona", "p", "", "persona the question is about")
	return cmd
}

func newNormalizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "normalize <id...>",
		Short: "Print the canonical form of persona IDs",
		Args:  cobra.MinimumNArgs(1),
		// No data needed
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, id := range args {
				if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", id, personaid.Normalize(id)); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
