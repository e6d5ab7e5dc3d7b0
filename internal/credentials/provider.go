package credentials

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/go-git/go-git/v5/plumbing/transport/ssh"
	gossh "golang.org/x/crypto/ssh"

	"github.com/temirov/dotupdater/internal/gitrepo"
)

const (
	// DefaultSSHUser is the account remote git hosts expect for SSH transport.
	DefaultSSHUser = "git"
	// DefaultTokenEnvironmentVariable names the variable holding an HTTPS token.
	DefaultTokenEnvironmentVariable = "DOTUPDATER_GIT_TOKEN"

	defaultTokenUsernameConstant           = "x-access-token"
	credentialsUnavailableMessageConstant  = "credentials unavailable"
	unsupportedMethodMessageConstant       = "unsupported authentication method"
	agentAuthErrorTemplateConstant         = "%w: ssh agent: %w"
	keyFileAuthErrorTemplateConstant       = "%w: ssh key %s: %w"
	keyPathMissingErrorTemplateConstant    = "%w: ssh key path not configured"
	tokenMissingErrorTemplateConstant      = "%w: environment variable %s is empty"
	remoteParseErrorTemplateConstant       = "%w: %w"
	unsupportedMethodErrorTemplateConstant = "%w: %s"
)

// ErrCredentialsUnavailable indicates the configured authentication source produced no usable credentials.
var ErrCredentialsUnavailable = errors.New(credentialsUnavailableMessageConstant)

// ErrUnsupportedMethod indicates the configured authentication method is unknown.
var ErrUnsupportedMethod = errors.New(unsupportedMethodMessageConstant)

// Method enumerates supported authentication sources.
type Method string

// Supported authentication methods.
const (
	MethodSSHAgent Method = Method("ssh-agent")
	MethodSSHKey   Method = Method("ssh-key")
	MethodToken    Method = Method("token")
	MethodNone     Method = Method("none")
)

// Provider resolves the authentication method for a remote URL.
// A nil method with a nil error means the transport should connect anonymously.
type Provider interface {
	Method(remoteURL string) (transport.AuthMethod, error)
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(remoteURL string) (transport.AuthMethod, error)

// Method implements Provider.
func (providerFunc ProviderFunc) Method(remoteURL string) (transport.AuthMethod, error) {
	return providerFunc(remoteURL)
}

// EnvironmentLookup reads environment variables.
type EnvironmentLookup func(name string) string

// Options selects and parameterizes a provider.
type Options struct {
	Method                Method
	SSHUser               string
	SSHKeyPath            string
	SSHKeyPassphraseEnv   string
	TokenEnv              string
	InsecureIgnoreHostKey bool
	EnvironmentLookup     EnvironmentLookup
}

// NewProvider builds the provider described by options.
func NewProvider(options Options) (Provider, error) {
	environmentLookup := options.EnvironmentLookup
	if environmentLookup == nil {
		environmentLookup = os.Getenv
	}

	sshUser := strings.TrimSpace(options.SSHUser)
	if len(sshUser) == 0 {
		sshUser = DefaultSSHUser
	}

	var hostKeyCallback gossh.HostKeyCallback
	if options.InsecureIgnoreHostKey {
		hostKeyCallback = gossh.InsecureIgnoreHostKey()
	}

	switch Method(strings.ToLower(strings.TrimSpace(string(options.Method)))) {
	case MethodSSHAgent, Method(""):
		return &SSHAgentProvider{Username: sshUser, HostKeyCallback: hostKeyCallback}, nil
	case MethodSSHKey:
		passphrase := ""
		if passphraseEnv := strings.TrimSpace(options.SSHKeyPassphraseEnv); len(passphraseEnv) > 0 {
			passphrase = environmentLookup(passphraseEnv)
		}
		return &SSHKeyProvider{
			Username:        sshUser,
			KeyPath:         strings.TrimSpace(options.SSHKeyPath),
			Passphrase:      passphrase,
			HostKeyCallback: hostKeyCallback,
		}, nil
	case MethodToken:
		tokenEnv := strings.TrimSpace(options.TokenEnv)
		if len(tokenEnv) == 0 {
			tokenEnv = DefaultTokenEnvironmentVariable
		}
		return &TokenProvider{TokenEnv: tokenEnv, EnvironmentLookup: environmentLookup}, nil
	case MethodNone:
		return NoneProvider{}, nil
	default:
		return nil, fmt.Errorf(unsupportedMethodErrorTemplateConstant, ErrUnsupportedMethod, options.Method)
	}
}

// SSHAgentProvider authenticates SSH remotes with keys held by the running SSH agent.
type SSHAgentProvider struct {
	Username        string
	HostKeyCallback gossh.HostKeyCallback
}

// Method implements Provider.
func (provider *SSHAgentProvider) Method(remoteURL string) (transport.AuthMethod, error) {
	if useSSH, parseError := isSSHRemote(remoteURL); parseError != nil || !useSSH {
		return nil, parseError
	}

	agentAuth, agentError := ssh.NewSSHAgentAuth(provider.Username)
	if agentError != nil {
		return nil, fmt.Errorf(agentAuthErrorTemplateConstant, ErrCredentialsUnavailable, agentError)
	}
	if provider.HostKeyCallback != nil {
		agentAuth.HostKeyCallback = provider.HostKeyCallback
	}
	return agentAuth, nil
}

// SSHKeyProvider authenticates SSH remotes with a private key file.
type SSHKeyProvider struct {
	Username        string
	KeyPath         string
	Passphrase      string
	HostKeyCallback gossh.HostKeyCallback
}

// Method implements Provider.
func (provider *SSHKeyProvider) Method(remoteURL string) (transport.AuthMethod, error) {
	if useSSH, parseError := isSSHRemote(remoteURL); parseError != nil || !useSSH {
		return nil, parseError
	}
	if len(provider.KeyPath) == 0 {
		return nil, fmt.Errorf(keyPathMissingErrorTemplateConstant, ErrCredentialsUnavailable)
	}

	keyAuth, keyError := ssh.NewPublicKeysFromFile(provider.Username, provider.KeyPath, provider.Passphrase)
	if keyError != nil {
		return nil, fmt.Errorf(keyFileAuthErrorTemplateConstant, ErrCredentialsUnavailable, provider.KeyPath, keyError)
	}
	if provider.HostKeyCallback != nil {
		keyAuth.HostKeyCallback = provider.HostKeyCallback
	}
	return keyAuth, nil
}

// TokenProvider authenticates HTTP(S) remotes with a token taken from the environment.
type TokenProvider struct {
	TokenEnv          string
	Username          string
	EnvironmentLookup EnvironmentLookup
}

// Method implements Provider.
func (provider *TokenProvider) Method(remoteURL string) (transport.AuthMethod, error) {
	remote, parseError := gitrepo.ParseRemoteURL(remoteURL)
	if parseError != nil {
		return nil, fmt.Errorf(remoteParseErrorTemplateConstant, ErrCredentialsUnavailable, parseError)
	}
	if remote.Protocol != gitrepo.RemoteProtocolHTTPS && remote.Protocol != gitrepo.RemoteProtocolHTTP {
		return nil, nil
	}

	environmentLookup := provider.EnvironmentLookup
	if environmentLookup == nil {
		environmentLookup = os.Getenv
	}
	token := strings.TrimSpace(environmentLookup(provider.TokenEnv))
	if len(token) == 0 {
		return nil, fmt.Errorf(tokenMissingErrorTemplateConstant, ErrCredentialsUnavailable, provider.TokenEnv)
	}

	username := provider.Username
	if len(username) == 0 {
		username = defaultTokenUsernameConstant
	}
	return &http.BasicAuth{Username: username, Password: token}, nil
}

// NoneProvider always connects anonymously.
type NoneProvider struct{}

// Method implements Provider.
func (NoneProvider) Method(string) (transport.AuthMethod, error) {
	return nil, nil
}

func isSSHRemote(remoteURL string) (bool, error) {
	remote, parseError := gitrepo.ParseRemoteURL(remoteURL)
	if parseError != nil {
		return false, fmt.Errorf(remoteParseErrorTemplateConstant, ErrCredentialsUnavailable, parseError)
	}
	return remote.Protocol == gitrepo.RemoteProtocolSSH, nil
}
