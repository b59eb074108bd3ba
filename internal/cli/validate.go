package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/billie-coop/mark/internal/api"
	"github.com/billie-coop/mark/internal/app"
)

type validateFunc func(context.Context, string) (*api.Validation, error)

func newValidateCommand(rt *state) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Ask the backend whether a path can be used",
	}

	sub := func(use, short, field string, fn func(*api.Client) validateFunc) *cobra.Command {
		return &cobra.Command{
			Use:   use + " PATH",
			Short: short,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				v, err := fn(rt.app.Client)(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return printValidation(rt.printer(cmd), field, args[0], v)
			},
		}
	}

	cmd.AddCommand(
		sub("input", "Validate an input folder", "input folder", func(c *api.Client) validateFunc { return c.ValidateInput }),
		sub("output", "Validate an output folder", "output folder", func(c *api.Client) validateFunc { return c.ValidateOutput }),
		sub("csv", "Validate a GitHub repository CSV", "GitHub CSV", func(c *api.Client) validateFunc { return c.ValidateCSV }),
	)
	return cmd
}

// printValidation prints the verdict and fails the command when it is negative.
func printValidation(p *printer, field, path string, v *api.Validation) error {
	if err := p.Result(v, func() {
		if v.OK() {
			p.Linef("valid: %s", v.Message)
		}
	}); err != nil {
		return err
	}
	if !v.OK() {
		return &app.ValidationError{Field: field, Path: path, Message: v.Message}
	}
	return nil
}
