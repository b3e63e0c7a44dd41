// Command manifest-ai normalizes cargo manifests and CEISA workbooks.
package main

import (
	"os"

	"github.com/Atarvano/ManifestAi/cmd/manifest-ai/commands"
	"github.com/Atarvano/ManifestAi/cmd/manifest-ai/ui"
)

func main() {
	if err := commands.Execute(); err != nil {
		ui.Error("%v", err)
		os.Exit(1)
	}
}
