package handlers

import (
	"errors"
	"fmt"

	"github.com/imamik/emc/internal/errs"
)

// Exit codes for each failure kind.
var exitCodes = map[errs.Kind]int{
	errs.Internal:        1,
	errs.NotFound:        3,
	errs.AlreadyExists:   4,
	errs.AddressTimeout:  5,
	errs.DdnsSyncFailure: 6,
	errs.ProvisionError:  7,
	errs.ProviderError:   8,
	errs.Aborted:         9,
}

// RemoteExitError reports a remote command that finished with a non-zero
// status. The CLI exits with the same status.
type RemoteExitError struct {
	Status int
}

func (e *RemoteExitError) Error() string {
	return fmt.Sprintf("remote command exited with status %d", e.Status)
}

// ExitCode maps err to the process exit status.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var remote *RemoteExitError
	if errors.As(err, &remote) && remote.Status > 0 {
		return remote.Status
	}
	if code, ok := exitCodes[errs.KindOf(err)]; ok {
		return code
	}
	return 1
}

func remoteStatus(status int, err error) error {
	if err != nil {
		return err
	}
	if status != 0 {
		return &RemoteExitError{Status: status}
	}
	return nil
}
