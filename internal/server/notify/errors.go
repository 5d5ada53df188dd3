package notify

import "errors"

var ErrClosed = errors.New("notifier closed")
