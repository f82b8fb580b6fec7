package mail

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/smtp"
	"strings"
	"time"

	"github.com/cloudwego/hertz/pkg/common/hlog"
)

// Message 一封纯文本邮件
type Message struct {
	To      string
	Subject string
	Body    string
}

// Sender 邮件发送，调用方不关心结果
type Sender interface {
	Send(ctx context.Context, msg *Message) error
}

// Default 进程使用的发送器，未配置SMTP时为NopSender
var Default Sender = NopSender{}

type NopSender struct{}

func (NopSender) Send(ctx context.Context, msg *Message) error {
	hlog.CtxDebugf(ctx, "mail disabled, dropping %q to %s", msg.Subject, msg.To)
	return nil
}

type SMTPSender struct {
	host     string
	port     string
	username string
	password string
	from     string
}

func NewSMTPSender(host, port, username, password, from string) *SMTPSender {
	if from == "" {
		from = username
	}
	return &SMTPSender{host: host, port: port, username: username, password: password, from: from}
}

func (s *SMTPSender) Send(_ context.Context, msg *Message) error {
	addr := s.host + ":" + s.port

	var c *smtp.Client
	var err error
	if s.port == "465" {
		// 465端口直接建立TLS连接
		conn, dialErr := tls.Dial("tcp", addr, &tls.Config{ServerName: s.host})
		if dialErr != nil {
			return fmt.Errorf("failed to connect to server: %w", dialErr)
		}
		c, err = smtp.NewClient(conn, s.host)
	} else {
		c, err = smtp.Dial(addr)
		if err == nil {
			if ok, _ := c.Extension("STARTTLS"); ok {
				err = c.StartTLS(&tls.Config{ServerName: s.host})
			}
		}
	}
	if err != nil {
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}
	defer c.Close()

	if s.username != "" {
		if err = c.Auth(smtp.PlainAuth("", s.username, s.password, s.host)); err != nil {
			return fmt.Errorf("authentication failed: %w", err)
		}
	}
	if err = c.Mail(s.from); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	if err = c.Rcpt(msg.To); err != nil {
		return fmt.Errorf("failed to set recipient: %w", err)
	}
	w, err := c.Data()
	if err != nil {
		return fmt.Errorf("failed to get data writer: %w", err)
	}
	if _, err = w.Write(Render(s.from, msg)); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}
	if err = w.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}
	return c.Quit()
}

// Render 组装邮件头和正文
func Render(from string, msg *Message) []byte {
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + msg.To + "\r\n")
	b.WriteString("Subject: " + msg.Subject + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(msg.Body)
	return []byte(b.String())
}

// SendAsync 后台发送，失败只记录日志
func SendAsync(msg *Message) {
	sender := Default
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := sender.Send(ctx, msg); err != nil {
			hlog.Warnf("send mail %q to %s failed: %v", msg.Subject, msg.To, err)
		}
	}()
}

func WelcomeMessage(to, username string) *Message {
	return &Message{
		To:      to,
		Subject: "Welcome to VidTube",
		Body: fmt.Sprintf("Hi %s,\n\nYour VidTube account is ready. Start uploading and sharing videos today.\n\nThe VidTube team\n",
			username),
	}
}
