//go:build windows

package deeplink

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/sys/windows"
	"golang.org/x/sys/windows/registry"

	"github.com/statisfy/statisfy/internal/logging"
)

// windowsBackend registers the scheme under HKCU\Software\Classes, which
// needs no elevation and overrides HKLM entries for the current user.
type windowsBackend struct {
	logger *logging.Logger
}

func newPlatformBackend(logger *logging.Logger) backend {
	return &windowsBackend{logger: logger}
}

func (b *windowsBackend) Register(scheme string) error {
	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("resolve executable path: %w", err)
	}

	root := `Software\Classes\` + scheme

	key, _, err := registry.CreateKey(registry.CURRENT_USER, root, registry.ALL_ACCESS)
	if err != nil {
		return classifyRegistryError(err)
	}
	defer key.Close()

	if err := key.SetStringValue("", "URL:"+scheme); err != nil {
		return classifyRegistryError(err)
	}
	// The empty "URL Protocol" value is what marks the key as a scheme handler.
	if err := key.SetStringValue("URL Protocol", ""); err != nil {
		return classifyRegistryError(err)
	}

	iconKey, _, err := registry.CreateKey(registry.CURRENT_USER, root+`\DefaultIcon`, registry.ALL_ACCESS)
	if err != nil {
		return classifyRegistryError(err)
	}
	defer iconKey.Close()
	if err := iconKey.SetStringValue("", exe+",0"); err != nil {
		return classifyRegistryError(err)
	}

	cmdKey, _, err := registry.CreateKey(registry.CURRENT_USER, root+`\shell\open\command`, registry.ALL_ACCESS)
	if err != nil {
		return classifyRegistryError(err)
	}
	defer cmdKey.Close()
	if err := cmdKey.SetStringValue("", fmt.Sprintf(`"%s" "%%1"`, exe)); err != nil {
		return classifyRegistryError(err)
	}

	b.logger.Debug().Str("key", `HKCU\`+root).Msg("Registry scheme association written")
	return nil
}

func classifyRegistryError(err error) error {
	if errors.Is(err, windows.ERROR_ACCESS_DENIED) || errors.Is(err, os.ErrPermission) {
		return fmt.Errorf("%w: %v", ErrPermissionDenied, err)
	}
	return err
}
