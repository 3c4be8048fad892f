// Statisfy - desktop client with statisfy:// deep-link support.
//
// Mode selection:
// - No args + display available → GUI mode
// - Deep-link URL args → GUI mode (delivered to the running instance)
// - --gui → GUI mode (force)
// - --cli → CLI mode (force)
// - CLI subcommands/flags → CLI mode
//
// Build with: wails build (for all platforms)
package main

import (
	"embed"
	"fmt"
	"os"
	"runtime"
	"slices"
	"strings"

	"github.com/statisfy/statisfy/internal/cli"
	"github.com/statisfy/statisfy/internal/constants"
	"github.com/statisfy/statisfy/internal/deeplink"
	"github.com/statisfy/statisfy/internal/version"
	"github.com/statisfy/statisfy/internal/wailsapp"
)

//go:embed all:frontend/dist
var assets embed.FS

func main() {
	// Propagate version from the single source of truth (internal/version)
	cli.Version = version.Version
	cli.BuildTime = version.BuildTime

	if isCLIMode() {
		if err := cli.Execute(); err != nil {
			os.Exit(1)
		}
		return
	}

	// GUI mode - launch Wails GUI (or forward to the running instance).
	// Suppress GTK ibus input method warnings on Linux; Wails uses its own
	// webview input handling.
	if runtime.GOOS == "linux" && os.Getenv("GTK_IM_MODULE") == "" {
		os.Setenv("GTK_IM_MODULE", "none")
	}
	wailsapp.Assets = assets
	if err := wailsapp.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// isCLIMode determines whether to run in CLI mode based on arguments and
// environment.
//
// CLI mode when:
// - --cli flag is present (force CLI mode)
// - CLI subcommands are present (register, send, status, completion)
// - CLI flags are present (--help, --version, -h)
// - No display available (DISPLAY/WAYLAND_DISPLAY not set on Linux)
//
// GUI mode when:
// - --gui flag is present (force GUI mode)
// - Arguments contain deep-link URLs (the OS launched us for a link)
// - No arguments and display is available
func isCLIMode() bool {
	// Explicit flags
	if slices.Contains(os.Args, "--cli") {
		return true
	}
	if slices.Contains(os.Args, "--gui") {
		return false
	}

	// A deep-link launch must reach the GUI path so the URL is either
	// handled here or forwarded to the running primary.
	if len(deeplink.FilterSchemeURLs(os.Args[1:], constants.DefaultScheme)) > 0 {
		return false
	}

	// CLI subcommands and flags that indicate CLI mode
	cliPatterns := []string{
		// Subcommands
		"register", "send", "status", "completion", "help",
		// Flags
		"--help", "-h", "--version",
	}

	for _, arg := range os.Args[1:] {
		for _, pattern := range cliPatterns {
			if arg == pattern || strings.HasPrefix(arg, pattern+" ") {
				return true
			}
		}
	}

	// No explicit mode or commands - check for display
	if len(os.Args) == 1 {
		if runtime.GOOS == "linux" {
			if os.Getenv("DISPLAY") == "" && os.Getenv("WAYLAND_DISPLAY") == "" {
				return true // No display, default to CLI
			}
		}
		// On macOS/Windows or Linux with display: default to GUI
		return false
	}

	// Unknown arguments - let CLI handle (might be typos or new commands)
	return true
}
