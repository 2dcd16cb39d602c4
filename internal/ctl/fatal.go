package ctl

// fatal is the single choke point the DESIGN NOTES call for: every
// command's pre/run/post returns its error through ordinary Go error
// propagation up to Driver.Run, which is the only place that decides
// what a non-nil error means for the process (cmd/root.go's Execute
// returns it and main.go maps it to an exit code). Nothing below this point calls os.Exit or
// panics for an ordinary command failure; a failed command unwinds back
// here with the transaction still unstaged, never partially flushed.
func fatal(err error) error { return err }
