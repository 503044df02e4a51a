package db

import "errors"

// ErrCommitFailed marks a transaction whose operations succeeded but whose commit did not.
// The final state is unknown to the caller.
var ErrCommitFailed = errors.New("transaction commit failed")
