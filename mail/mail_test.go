package mail

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime/quotedprintable"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/orlanda/accounts/config"
	"github.com/orlanda/accounts/db"
)

// mockSmtpServer is a minimal in-process SMTP server. It intentionally does
// not advertise STARTTLS, so the client proceeds over the plain connection,
// and it accepts AUTH PLAIN without checking credentials. One server handles
// exactly one connection; each test creates its own. Everything sent after
// DATA is captured for assertions.
type mockSmtpServer struct {
	listener net.Listener
	addr     string
	data     string
	err      chan error
}

func newMockSmtpServer(t *testing.T) *mockSmtpServer {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen on a local port: %v", err)
	}

	server := &mockSmtpServer{
		listener: listener,
		addr:     listener.Addr().String(),
		err:      make(chan error, 1),
	}
	t.Cleanup(func() { _ = listener.Close() })

	go server.serve(t)
	return server
}

func (s *mockSmtpServer) serve(t *testing.T) {
	conn, err := s.listener.Accept()
	if err != nil {
		if !strings.Contains(err.Error(), "use of closed network connection") {
			s.err <- err
		}
		return
	}
	s.handleConnection(t, conn)
}

func (s *mockSmtpServer) handleConnection(t *testing.T, conn net.Conn) {
	defer func() { _ = conn.Close() }()

	reader := bufio.NewReader(conn)
	if _, err := fmt.Fprint(conn, "220 mock-server ESMTP\r\n"); err != nil {
		return
	}

	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			return
		}

		cmd := strings.ToUpper(strings.TrimSpace(line))

		switch {
		case strings.HasPrefix(cmd, "HELO"):
			if _, err := fmt.Fprint(conn, "250 mock-server\r\n"); err != nil {
				return
			}
		case strings.HasPrefix(cmd, "EHLO"):
			if _, err := fmt.Fprint(conn, "250-mock-server\r\n250 AUTH PLAIN\r\n"); err != nil {
				return
			}
		case strings.HasPrefix(cmd, "AUTH PLAIN"):
			if _, err := fmt.Fprint(conn, "235 2.7.0 Authentication Succeeded\r\n"); err != nil {
				return
			}
		case strings.HasPrefix(cmd, "MAIL FROM:"), strings.HasPrefix(cmd, "RCPT TO:"):
			if _, err := fmt.Fprint(conn, "250 OK\r\n"); err != nil {
				return
			}
		case strings.HasPrefix(cmd, "DATA"):
			if _, err := fmt.Fprint(conn, "354 End data with <CR><LF>.<CR><LF>\r\n"); err != nil {
				return
			}
			for {
				bodyLine, err := reader.ReadString('\n')
				if err != nil {
					return
				}
				if bodyLine == ".\r\n" {
					break
				}
				s.data += bodyLine
			}
			if _, err := fmt.Fprint(conn, "250 OK: queued as 12345\r\n"); err != nil {
				return
			}
		case strings.HasPrefix(cmd, "QUIT"):
			_, _ = fmt.Fprint(conn, "221 Bye\r\n")
			return
		}
	}
}

func setupTest(t *testing.T) (*mockSmtpServer, *Mailer, config.Smtp) {
	t.Helper()

	server := newMockSmtpServer(t)

	host, portStr, err := net.SplitHostPort(server.addr)
	if err != nil {
		t.Fatalf("failed to parse mock server address: %v", err)
	}
	var port int
	if _, err := fmt.Sscanf(portStr, "%d", &port); err != nil {
		t.Fatalf("failed to parse port: %v", err)
	}

	cfg := config.Smtp{
		Enabled:     true,
		Host:        host,
		Port:        port,
		FromName:    "Test App",
		FromAddress: "noreply@test.com",
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return server, New(cfg, logger), cfg
}

func assertContains(t *testing.T, s, substr string) {
	t.Helper()
	if !strings.Contains(s, substr) {
		t.Errorf("expected string to contain %q, but it did not. Full string: %s", substr, s)
	}
}

func decodeQuotedPrintable(t *testing.T, s string) string {
	t.Helper()
	qpReader := quotedprintable.NewReader(strings.NewReader(s))
	decodedBytes, err := io.ReadAll(qpReader)
	if err != nil {
		t.Fatalf("failed to decode quoted-printable: %v", err)
	}
	return string(decodedBytes)
}

func TestSendOtpEmail(t *testing.T) {
	server, mailer, cfg := setupTest(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := mailer.SendOtpEmail(ctx, "test@example.com", "123456", db.OtpKindEmailVerify); err != nil {
		t.Fatalf("SendOtpEmail failed: %v", err)
	}

	select {
	case srvErr := <-server.err:
		t.Fatalf("mock SMTP server error: %v", srvErr)
	default:
	}

	decoded := decodeQuotedPrintable(t, server.data)
	assertContains(t, decoded, "To: test@example.com")
	assertContains(t, decoded, fmt.Sprintf("From: %s <%s>", cfg.FromName, cfg.FromAddress))
	assertContains(t, decoded, "Subject: Verify your email address")
	assertContains(t, decoded, "123456")
}

func TestSendOtpEmailTwoFactorSubject(t *testing.T) {
	server, mailer, _ := setupTest(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := mailer.SendOtpEmail(ctx, "test@example.com", "123456", db.OtpKindGoogleTwoFactor); err != nil {
		t.Fatalf("SendOtpEmail failed: %v", err)
	}

	decoded := decodeQuotedPrintable(t, server.data)
	assertContains(t, decoded, "Subject: Confirm your sign-in")
}

func TestSendPasswordResetEmail(t *testing.T) {
	server, mailer, _ := setupTest(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	link := "https://app.example.com/reset-password?token=789"
	if err := mailer.SendPasswordResetEmail(ctx, "reset@example.com", link); err != nil {
		t.Fatalf("SendPasswordResetEmail failed: %v", err)
	}

	select {
	case srvErr := <-server.err:
		t.Fatalf("mock SMTP server error: %v", srvErr)
	default:
	}

	decoded := decodeQuotedPrintable(t, server.data)
	assertContains(t, decoded, "To: reset@example.com")
	assertContains(t, decoded, "Subject: Reset your password")
	assertContains(t, decoded, fmt.Sprintf(`href="%s"`, link))
}

// With SMTP disabled the mailer drops the message and reports success; the
// queue must not retry in environments without an SMTP account.
func TestSendWithSmtpDisabled(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	mailer := New(config.Smtp{Enabled: false}, logger)

	if err := mailer.SendOtpEmail(context.Background(), "test@example.com", "123456", db.OtpKindEmailVerify); err != nil {
		t.Errorf("disabled mailer should not error: %v", err)
	}
	if err := mailer.SendPasswordResetEmail(context.Background(), "test@example.com", "https://x/reset"); err != nil {
		t.Errorf("disabled mailer should not error: %v", err)
	}
}
