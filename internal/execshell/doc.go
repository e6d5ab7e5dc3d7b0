// Package execshell runs external commands with structured logging.
//
// ShellExecutor wraps a CommandRunner (OSCommandRunner in production) and is
// used to run post-update hooks inside freshly updated repositories.
package execshell
