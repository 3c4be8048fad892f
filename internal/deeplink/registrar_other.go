//go:build !linux && !windows && !darwin

package deeplink

import (
	"github.com/statisfy/statisfy/internal/logging"
)

type unsupportedBackend struct{}

func newPlatformBackend(*logging.Logger) backend {
	return unsupportedBackend{}
}

func (unsupportedBackend) Register(string) error {
	return ErrUnsupportedPlatform
}
