package vault

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidArgument is returned when GetClient is called with a blank
// address or credential.
var ErrInvalidArgument = errors.New("invalid argument")

// ConfigurationError reports that the environment names a Vault server but
// none of the credential variables are set.
type ConfigurationError struct {
	Variables []string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("required environment variable not found: %s", strings.Join(e.Variables, " or "))
}

func invalidArgument(name string) error {
	return fmt.Errorf("%w: %s cannot be empty or whitespace", ErrInvalidArgument, name)
}
