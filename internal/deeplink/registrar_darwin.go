//go:build darwin

package deeplink

import (
	"github.com/statisfy/statisfy/internal/logging"
)

// darwinBackend is a no-op: on macOS the scheme association comes from the
// app bundle's Info.plist (CFBundleURLTypes) and Launch Services records it
// when the bundle lands on disk. Runtime re-registration is neither needed
// nor possible without private APIs.
type darwinBackend struct {
	logger *logging.Logger
}

func newPlatformBackend(logger *logging.Logger) backend {
	return &darwinBackend{logger: logger}
}

func (b *darwinBackend) Register(scheme string) error {
	b.logger.Debug().Str("scheme", scheme).Msg("Scheme association handled by app bundle on macOS")
	return nil
}
