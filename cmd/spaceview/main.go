// main.go - spaceview command-line entry point
//
// (c) 2024 Sudhi Herle <sudhi@herle.net>
//
// Licensing Terms: GPLv2
//
// If you need a commercial license for this work, please contact
// the author.
//
// This software does not come with any express or implied
// warranty; it is provided "as is". No claim  is made to its
// suitability for any purpose.

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/opencoff/spaceview/engine"
)

func defaultStatePaths() (settingsPath, cachePath string) {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	base := filepath.Join(dir, "spaceview")
	return filepath.Join(base, "settings.json"), filepath.Join(base, "cache.db")
}

func newEngine() (*engine.Engine, error) {
	settingsPath, cachePath := defaultStatePaths()
	if err := os.MkdirAll(filepath.Dir(cachePath), 0755); err != nil {
		return nil, err
	}
	return engine.New(engine.Options{SettingsPath: settingsPath, CachePath: cachePath})
}

func main() {
	root := &cobra.Command{
		Use:           "spaceview",
		Short:         "Inspect disk usage and find duplicate files",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	root.AddCommand(scanCmd())
	root.AddCommand(dupCmd())
	root.AddCommand(cmpCmd())
	root.AddCommand(cacheCmd())
	root.AddCommand(watchCmd())
	root.AddCommand(snapshotCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "spaceview:", err)
		os.Exit(1)
	}
}
