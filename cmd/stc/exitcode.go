package main

// Exit codes match §5/§6's CI contract exactly: every subcommand
// that accepts --ci reports one of these via both its process exit status
// and its JSON status field.
const (
	ExitSuccess     = 0
	ExitConfigError = 10
	ExitBuildFailed = 11
	ExitTestFailed  = 12
	ExitTimeout     = 13
	ExitInternal    = 20
)
