// Package credentials selects the go-git authentication method used when a
// repository contacts its remote.
//
// The default provider asks the running SSH agent for keys as user "git".
// Key files, an HTTPS token read from the environment, and anonymous access
// are available as alternatives. Local filesystem remotes never receive
// credentials.
package credentials
