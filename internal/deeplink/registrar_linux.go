//go:build linux

package deeplink

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/statisfy/statisfy/internal/logging"
)

// desktopEntryName is the freedesktop launcher file that carries the
// x-scheme-handler association.
const desktopEntryName = "statisfy.desktop"

// linuxBackend registers the scheme through a desktop entry plus an
// xdg-mime default-handler association.
type linuxBackend struct {
	logger *logging.Logger
}

func newPlatformBackend(logger *logging.Logger) backend {
	return &linuxBackend{logger: logger}
}

func (b *linuxBackend) Register(scheme string) error {
	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("resolve executable path: %w", err)
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("resolve home directory: %w", err)
	}

	appsDir := filepath.Join(home, ".local", "share", "applications")
	if err := os.MkdirAll(appsDir, 0755); err != nil {
		return classifyFSError(err)
	}

	entry := fmt.Sprintf(`[Desktop Entry]
Name=Statisfy
Exec=%s %%u
Type=Application
Terminal=false
NoDisplay=true
MimeType=x-scheme-handler/%s;
`, exe, scheme)

	entryPath := filepath.Join(appsDir, desktopEntryName)
	// Rewriting an identical entry on every start keeps registration idempotent.
	if err := os.WriteFile(entryPath, []byte(entry), 0644); err != nil {
		return classifyFSError(err)
	}

	mime := "x-scheme-handler/" + scheme
	cmd := exec.Command("xdg-mime", "default", desktopEntryName, mime)
	if out, err := cmd.CombinedOutput(); err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return fmt.Errorf("xdg-mime not available: %w", ErrUnsupportedPlatform)
		}
		return fmt.Errorf("xdg-mime default failed: %s: %w", string(out), err)
	}

	b.logger.Debug().Str("entry", entryPath).Str("mime", mime).Msg("Desktop entry installed")
	return nil
}

func classifyFSError(err error) error {
	if errors.Is(err, os.ErrPermission) {
		return fmt.Errorf("%w: %v", ErrPermissionDenied, err)
	}
	return err
}
