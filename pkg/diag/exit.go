package diag

import "os"

// osExit is a package-level var so tests can replace it and exercise Abort's
// rendering path without actually killing the test binary; stderr simply
// returns os.Stderr.
var osExit = os.Exit

func stderr() *os.File { return os.Stderr }
