package main

import (
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/jrelvas-ipc/hwcaps-loader/pkg/dispatch"
	"github.com/jrelvas-ipc/hwcaps-loader/pkg/hwcaps"
	"github.com/jrelvas-ipc/hwcaps-loader/pkg/paths"
)

var (
	asTarget string
	tierName string
)

var candidatesCmd = &cobra.Command{
	Use:   "candidates [argv0]",
	Short: "Dry-run the candidate walk for an invocation",
	Long: `Candidates builds the ordered fallback sequence for an invocation and
stats each candidate path, showing which variant binary the loader
would execute. Nothing is executed.

The target can be given as an invocation path (argv0, resolved through
the filesystem like the loader does) or directly with --target as a
prefix-relative subpath such as bin/foo.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		layout := cfg.Layout()

		target, err := resolveCandidateTarget(layout, args)
		if err != nil {
			return err
		}

		tier := hwcaps.DetectHost()
		if tierName != "" {
			tier, err = hwcaps.ParseTier(tierName)
			if err != nil {
				return fmt.Errorf("unknown tier %q", tierName)
			}
		}

		seq, err := layout.Candidates(tier, target)
		if err != nil {
			return err
		}

		walked, chosen := dispatch.NewWithExec(nil, nil, nil).DryRun(seq)

		fmt.Printf("%s %s\n", styled(labelStyle, "Target:"), target.Rel())
		fmt.Printf("%s %s\n\n", styled(labelStyle, "Tier:"), styled(tierStyle, tier.String()))

		table := tablewriter.NewWriter(os.Stdout)
		table.Header("Order", "Tier", "Candidate", "Status")

		for i, c := range walked {
			status := styled(absentStyle, "absent")
			if chosen != nil && c.Path == chosen.Path {
				status = styled(selectedStyle, "selected")
			}
			table.Append(fmt.Sprintf("%d", i+1), c.Tier.String(), c.Path, status)
		}
		table.Render()

		if chosen == nil {
			fmt.Printf("\n%s\n", styled(errorStyle, "No viable binaries: the loader would exit 243."))
		}
		return nil
	},
}

func init() {
	candidatesCmd.Flags().StringVar(&asTarget, "target", "", "Prefix-relative target subpath (bin/foo), bypassing argv0 resolution")
	candidatesCmd.Flags().StringVar(&tierName, "tier", "", "Assume this capability tier instead of detecting the host")
}

func resolveCandidateTarget(layout paths.Layout, args []string) (paths.Target, error) {
	if asTarget != "" {
		return paths.NewTarget(asTarget)
	}
	if len(args) == 0 {
		return paths.Target{}, fmt.Errorf("an argv0 argument or --target is required")
	}
	return paths.NewResolver(layout).Requested(args[0])
}
