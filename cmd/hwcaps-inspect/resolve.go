package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jrelvas-ipc/hwcaps-loader/pkg/errors"
	"github.com/jrelvas-ipc/hwcaps-loader/pkg/paths"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <argv0>",
	Short: "Show how an invocation path resolves to a dispatch target",
	Long: `Resolve runs the loader's identity resolution on the given invocation
path and reports the resulting target, or the exact error and exit code
the loader would have produced.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		layout := cfg.Layout()
		resolver := paths.NewResolver(layout)

		fmt.Printf("%s %s\n", styled(labelStyle, "Loader path:"), layout.LoaderPath())
		fmt.Printf("%s %s\n", styled(labelStyle, "Variants root:"), layout.VariantsRoot())

		target, err := resolver.Requested(args[0])
		if err != nil {
			fmt.Printf("%s %s\n", styled(labelStyle, "Resolution:"), styled(errorStyle, "failed"))
			fmt.Printf("%s %v\n", styled(labelStyle, "Error:"), err)
			fmt.Printf("%s %d\n", styled(labelStyle, "Loader exit code:"), errors.ExitCode(err))
			return nil
		}

		fmt.Printf("%s %s\n", styled(labelStyle, "Target:"), styled(selectedStyle, target.Rel()))
		return nil
	},
}
