package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"pcx/internal/config"
	"pcx/internal/manifest"
)

var initManifest bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration under <root>/.pcx",
	Long: `Create .pcx/config.json with documented defaults. With --manifest, also
write a starter .pcx/scan.toml declaring project-specific scan settings.

Examples:
  pcx init
  pcx init --manifest`,
	Run: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initManifest, "manifest", false, "Also write a starter scan manifest")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) {
	root := resolveRoot()

	cfgPath := filepath.Join(root, ".pcx", "config.json")
	if _, err := os.Stat(cfgPath); err == nil {
		fatal("config already exists at %s", cfgPath)
	}

	cfg := config.DefaultConfig()
	if err := cfg.Save(root); err != nil {
		fatal("writing config: %v", err)
	}
	fmt.Printf("Wrote %s\n", cfgPath)

	if initManifest {
		m := &manifest.Manifest{
			Extensions: config.DefaultExtensions,
			Exclude:    []string{"vendor/", "node_modules/"},
		}
		if err := m.Save(root); err != nil {
			fatal("writing manifest: %v", err)
		}
		fmt.Printf("Wrote %s\n", manifest.Path(root))
	}
}
