package main

import (
	"fmt"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/spf13/cobra"

	"github.com/jrelvas-ipc/hwcaps-loader/pkg/hwcaps"
)

var (
	showFlags bool
	showHost  bool
)

var detectCmd = &cobra.Command{
	Use:   "detect",
	Short: "Show the detected CPU capability tier",
	Long: `Detect queries the host CPU and reports the capability tier the loader
would dispatch for. With --flags, each tier's requirement set is listed
along with whether this machine satisfies it.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		fs := hwcaps.HostFeatureSet()
		tier := hwcaps.Detect(fs)

		fmt.Printf("%s %s\n", styled(labelStyle, "Detected tier:"), styled(tierStyle, tier.String()))

		if showHost {
			if err := printHostSummary(); err != nil {
				return err
			}
		}

		if showFlags {
			fmt.Println()
			for t := hwcaps.Lowest(); t <= hwcaps.Highest(); t++ {
				verdict := "not satisfied"
				style := absentStyle
				if hwcaps.Satisfies(fs, t) {
					verdict = "satisfied"
					style = selectedStyle
				}
				fmt.Printf("  %-10s %s\n", t, styled(style, verdict))
				if reqs := hwcaps.Requirements(t); len(reqs) > 0 {
					fmt.Printf("             requires: %s\n", joinFeatures(reqs))
				}
			}
		}

		return nil
	},
}

func init() {
	detectCmd.Flags().BoolVar(&showFlags, "flags", false, "List each tier's requirement set and its verdict")
	detectCmd.Flags().BoolVar(&showHost, "host", false, "Include a host CPU summary")
}

func printHostSummary() error {
	infos, err := cpu.Info()
	if err != nil {
		return fmt.Errorf("reading host CPU info: %w", err)
	}
	counts, err := cpu.Counts(true)
	if err != nil {
		return fmt.Errorf("counting host CPUs: %w", err)
	}

	if len(infos) > 0 {
		fmt.Printf("%s %s\n", styled(labelStyle, "Host CPU:"), infos[0].ModelName)
	}
	fmt.Printf("%s %d\n", styled(labelStyle, "Threads:"), counts)
	return nil
}

func joinFeatures(features []hwcaps.Feature) string {
	out := ""
	for i, f := range features {
		if i > 0 {
			out += " "
		}
		out += string(f)
	}
	return out
}
