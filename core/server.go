package core

import (
	"context"
	"crypto/subtle"
	"fmt"
	"io"
	"log"

	"github.com/gliderlabs/ssh"
	gossh "golang.org/x/crypto/ssh"

	"github.com/pipesh/pipesh/core/config"
	"github.com/pipesh/pipesh/core/logger"
)

type sshContextKey struct {
	name string
}

// ContextAuthPublicKey holds the fingerprint of the public key the client
// offered, if any. Key auth is always rejected but the fingerprint is kept
// for the session log.
var ContextAuthPublicKey = sshContextKey{"auth-public-key"}

// Server exposes interpreter sessions to remote SSH clients.
type Server struct {
	configuration *config.Configuration
	logger        *logger.Logger
	sshServer     *ssh.Server
}

func NewServer(configuration *config.Configuration, logDest io.Writer) (*Server, error) {
	server := &Server{
		configuration: configuration,
		logger:        logger.NewJsonLinesLogRecorder(logDest),
	}

	server.sshServer = &ssh.Server{
		Addr: fmt.Sprintf(":%d", configuration.SSHPort),
		Handler: func(s ssh.Session) {
			server.HandleConnection(s)
		},
		PublicKeyHandler: func(ctx ssh.Context, key ssh.PublicKey) bool {
			ctx.SetValue(ContextAuthPublicKey, gossh.FingerprintSHA256(key))
			return false
		},
		PasswordHandler: func(ctx ssh.Context, password string) bool {
			if configuration.AllowAnyPassword {
				return true
			}
			ok := false
			for _, candidate := range configuration.GlobalPasswords {
				if subtle.ConstantTimeCompare([]byte(password), []byte(candidate)) == 1 {
					ok = true
				}
			}
			return ok
		},
	}

	if keyPem, err := configuration.PrivateKeyPem(); err == nil {
		signer, err := gossh.ParsePrivateKey(keyPem)
		if err != nil {
			return nil, fmt.Errorf("parsing host key: %w", err)
		}
		server.sshServer.AddHostKey(signer)
	}

	return server, nil
}

func (srv *Server) HandleConnection(s ssh.Session) error {
	sessionLogger := srv.logger.NewSession("")

	fingerprint, _ := s.Context().Value(ContextAuthPublicKey).(string)
	sessionLogger.Record(&logger.SessionStart{
		User:                 s.User(),
		RemoteAddr:           fmt.Sprintf("%s", s.RemoteAddr()),
		PublicKeyFingerprint: fingerprint,
	})
	defer sessionLogger.Record(&logger.SessionEnd{})

	ptyInfo, winch, isPty := s.Pty()
	windowWidth := ptyInfo.Window.Width
	go (func() {
		for window := range winch {
			windowWidth = window.Width
		}
	})()

	session, err := NewSession(srv.configuration, SessionIO{
		Stdin:  s,
		Stdout: s,
		Stderr: s.Stderr(),
		FuncGetWidth: func() int {
			return windowWidth
		},
		FuncIsTerminal: func() bool {
			return isPty
		},
	}, sessionLogger)
	if err != nil {
		s.Exit(1)
		return err
	}
	defer session.Close()

	if err := session.Run(); err != nil {
		s.Exit(1)
		return err
	}

	s.Exit(0)
	return nil
}

func (srv *Server) ListenAndServe() error {
	log.Printf("- Starting SSH server on %s\n", srv.sshServer.Addr)
	return srv.sshServer.ListenAndServe()
}

func (srv *Server) Shutdown(ctx context.Context) error {
	return srv.sshServer.Shutdown(ctx)
}
