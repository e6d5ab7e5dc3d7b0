package gitrepo

import (
	"fmt"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/transport"
)

// RemoteProtocol enumerates git remote transports recognized when selecting credentials.
type RemoteProtocol string

// Supported remote protocols.
const (
	RemoteProtocolSSH   RemoteProtocol = RemoteProtocol("ssh")
	RemoteProtocolHTTPS RemoteProtocol = RemoteProtocol("https")
	RemoteProtocolHTTP  RemoteProtocol = RemoteProtocol("http")
	RemoteProtocolGit   RemoteProtocol = RemoteProtocol("git")
	RemoteProtocolFile  RemoteProtocol = RemoteProtocol("file")
)

// RemoteURL represents a structured git remote URL.
type RemoteURL struct {
	Protocol RemoteProtocol
	User     string
	Host     string
	Path     string
	Raw      string
}

// RequiresNetwork reports whether reaching the remote involves a network round trip.
func (remote RemoteURL) RequiresNetwork() bool {
	return remote.Protocol != RemoteProtocolFile
}

// RemoteURLParseError indicates a remote string could not be parsed.
type RemoteURLParseError struct {
	Input   string
	Message string
}

// Error describes the parse failure.
func (parseError RemoteURLParseError) Error() string {
	return fmt.Sprintf(remoteURLParseErrorTemplateConstant, parseError.Input, parseError.Message)
}

// UnsupportedProtocolError indicates the remote uses a transport this package does not recognize.
type UnsupportedProtocolError struct {
	Protocol RemoteProtocol
}

// Error describes the unsupported protocol.
func (protocolError UnsupportedProtocolError) Error() string {
	return fmt.Sprintf(remoteURLParseErrorTemplateConstant, protocolError.Protocol, unknownRemoteProtocolMessageConstant)
}

var recognizedRemoteProtocols = map[string]RemoteProtocol{
	string(RemoteProtocolSSH):   RemoteProtocolSSH,
	string(RemoteProtocolHTTPS): RemoteProtocolHTTPS,
	string(RemoteProtocolHTTP):  RemoteProtocolHTTP,
	string(RemoteProtocolGit):   RemoteProtocolGit,
	string(RemoteProtocolFile):  RemoteProtocolFile,
}

// ParseRemoteURL converts a textual remote URL, scp-like address, or local path into a structured representation.
func ParseRemoteURL(remote string) (RemoteURL, error) {
	trimmedRemote := strings.TrimSpace(remote)
	if len(trimmedRemote) == 0 {
		return RemoteURL{}, RemoteURLParseError{Input: remote, Message: requiredValueMessageConstant}
	}

	endpoint, endpointError := transport.NewEndpoint(trimmedRemote)
	if endpointError != nil {
		return RemoteURL{}, RemoteURLParseError{Input: remote, Message: invalidRemoteURLMessageConstant}
	}

	protocol, recognized := recognizedRemoteProtocols[strings.ToLower(endpoint.Protocol)]
	if !recognized {
		return RemoteURL{}, UnsupportedProtocolError{Protocol: RemoteProtocol(endpoint.Protocol)}
	}

	return RemoteURL{
		Protocol: protocol,
		User:     endpoint.User,
		Host:     endpoint.Host,
		Path:     endpoint.Path,
		Raw:      trimmedRemote,
	}, nil
}
