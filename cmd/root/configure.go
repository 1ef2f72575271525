package root

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/poe-code/poe-code/internal/printer"
	"github.com/poe-code/poe-code/internal/xerrors"
	"github.com/poe-code/poe-code/mutate"
	"github.com/poe-code/poe-code/pathmap"
	"github.com/poe-code/poe-code/providers"
	"github.com/poe-code/poe-code/render"
	"github.com/poe-code/poe-code/vfs"
)

type applyFlags struct {
	baseURL  string
	apiKey   string
	model    string
	isolated bool
	dryRun   bool
}

func (f *applyFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.baseURL, "base-url", "", "Override the Poe base URL")
	cmd.Flags().StringVar(&f.apiKey, "api-key", "", "Poe API key")
	cmd.Flags().StringVar(&f.model, "model", "", "Default model id to configure")
	cmd.Flags().BoolVar(&f.isolated, "isolated", false, "Redirect config into an isolated subtree under ~/.poe-code/<agent> instead of editing the agent's native config in place")
	cmd.Flags().BoolVar(&f.dryRun, "dry-run", false, "Report what would change without writing")
}

func (f *applyFlags) options() mutate.Options {
	opts := mutate.Options{}
	if f.baseURL != "" {
		opts["baseURL"] = f.baseURL
	}
	if f.apiKey != "" {
		opts["apiKey"] = f.apiKey
	}
	if f.model != "" {
		opts["model"] = f.model
	}
	return opts
}

func buildContext(agentID, binary string, f *applyFlags) (mutate.Context, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return mutate.Context{}, &xerrors.ValidationError{Message: "could not resolve the user's home directory"}
	}

	reg := render.New()
	if err := providers.RegisterTemplates(reg); err != nil {
		return mutate.Context{}, err
	}

	ctx := mutate.Context{
		FS:        vfs.NewOS(),
		HomeDir:   home,
		DryRun:    f.dryRun,
		Templates: reg,
	}

	if f.isolated {
		isolatedBase := filepath.Join(home, ".poe-code", agentID)
		ctx.PathMapper = pathmap.New(home, isolatedBase, binary)
	}

	return ctx, nil
}

func newConfigureCmd() *cobra.Command {
	var flags applyFlags

	cmd := &cobra.Command{
		Use:   "configure <agent>",
		Short: "Route a coding-agent CLI through Poe",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApply(cmd, args[0], &flags, true)
		},
	}
	flags.register(cmd)
	return cmd
}

func newUnconfigureCmd() *cobra.Command {
	var flags applyFlags

	cmd := &cobra.Command{
		Use:   "unconfigure <agent>",
		Short: "Remove Poe routing from a coding-agent CLI",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApply(cmd, args[0], &flags, false)
		},
	}
	flags.register(cmd)
	return cmd
}

func runApply(cmd *cobra.Command, agentID string, flags *applyFlags, configure bool) error {
	manifest, err := providers.Get(agentID)
	if err != nil {
		return err
	}

	ctx, err := buildContext(agentID, manifest.Binary, flags)
	if err != nil {
		return err
	}

	opts := flags.options()

	var list []mutate.Mutation
	verb := "Configuring"
	if configure {
		list = manifest.Configure(opts)
	} else {
		verb = "Unconfiguring"
		list = manifest.Unconfigure(opts)
	}

	p := printer.New(cmd.OutOrStdout())
	p.PrintHeader(verb, manifest.DisplayName)

	result, err := mutate.Run(list, ctx, opts)
	if err != nil {
		return fmt.Errorf("%s %s: %w", verb, manifest.DisplayName, err)
	}

	p.PrintOutcomes(result.Effects)
	return nil
}
