package deploy

import (
	"context"
	"fmt"
	"os"
	"path"
	"strings"
	"time"

	"golang.org/x/crypto/ssh"

	"github.com/SAMUEL-ST-16/ExtractReq/internal/config"
)

// CommandRunner executes commands on the deployment target.
type CommandRunner interface {
	Run(ctx context.Context, command string) (string, error)
	Upload(ctx context.Context, localPath, remotePath string) error
	Close() error
}

// SSHRunner implements CommandRunner over an SSH connection with key auth.
type SSHRunner struct {
	client *ssh.Client
}

// DialSSH connects to the deploy target using the configured private key.
func DialSSH(cfg config.DeployConfig) (*SSHRunner, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("deploy host is not configured")
	}

	keyPath := expandHome(cfg.KeyPath)
	keyData, err := os.ReadFile(keyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read SSH key %s: %w", keyPath, err)
	}

	signer, err := ssh.ParsePrivateKey(keyData)
	if err != nil {
		return nil, fmt.Errorf("failed to parse SSH key: %w", err)
	}

	clientCfg := &ssh.ClientConfig{
		User:            cfg.User,
		Auth:            []ssh.AuthMethod{ssh.PublicKeys(signer)},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         10 * time.Second,
	}

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	client, err := ssh.Dial("tcp", addr, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("SSH connection to %s failed: %w", addr, err)
	}

	return &SSHRunner{client: client}, nil
}

// Run executes a command remotely and returns its combined output.
func (r *SSHRunner) Run(ctx context.Context, command string) (string, error) {
	session, err := r.client.NewSession()
	if err != nil {
		return "", fmt.Errorf("failed to open SSH session: %w", err)
	}
	defer session.Close()

	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			session.Close()
		case <-done:
		}
	}()

	output, err := session.CombinedOutput(command)
	close(done)
	if err != nil {
		return string(output), fmt.Errorf("remote command %q failed: %w", command, err)
	}
	return string(output), nil
}

// Upload streams a local file to the remote path over the session's stdin.
func (r *SSHRunner) Upload(ctx context.Context, localPath, remotePath string) error {
	data, err := os.ReadFile(localPath)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", localPath, err)
	}

	session, err := r.client.NewSession()
	if err != nil {
		return fmt.Errorf("failed to open SSH session: %w", err)
	}
	defer session.Close()

	stdin, err := session.StdinPipe()
	if err != nil {
		return fmt.Errorf("failed to open stdin pipe: %w", err)
	}

	cmd := fmt.Sprintf("mkdir -p %s && cat > %s", shellQuote(path.Dir(remotePath)), shellQuote(remotePath))
	if err := session.Start(cmd); err != nil {
		return fmt.Errorf("failed to start upload of %s: %w", remotePath, err)
	}

	if _, err := stdin.Write(data); err != nil {
		return fmt.Errorf("failed to stream %s: %w", remotePath, err)
	}
	if err := stdin.Close(); err != nil {
		return fmt.Errorf("failed to finish upload of %s: %w", remotePath, err)
	}

	if err := session.Wait(); err != nil {
		return fmt.Errorf("upload of %s failed: %w", remotePath, err)
	}
	return nil
}

// Close terminates the SSH connection.
func (r *SSHRunner) Close() error {
	return r.client.Close()
}

func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

func expandHome(p string) string {
	if strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return path.Join(home, p[2:])
		}
	}
	return p
}
