// Command hwcaps-inspect is the packager-facing diagnostic front-end
// for hwcaps-loader. It reuses the loader's resolution pipeline in
// dry-run form: nothing it does can replace the current process.
package main

import (
	"os"
)

func main() {
	if err := Execute(); err != nil {
		os.Exit(1)
	}
}
