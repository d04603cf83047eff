package action

import (
	"fmt"
	"os"

	"github.com/pkg/browser"
)

type defaultOpener struct{}

// NewOpener returns an Opener backed by the platform's default handlers.
func NewOpener() Opener {
	return defaultOpener{}
}

func (defaultOpener) OpenURL(address string) error {
	if address == "" {
		return fmt.Errorf("empty URL")
	}
	return browser.OpenURL(address)
}

func (defaultOpener) OpenFile(path string) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	return browser.OpenFile(path)
}
