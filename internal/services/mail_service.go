package services

import (
	"bytes"
	"fmt"
	"html/template"
	"log"
	"net/smtp"
	"os"
	"path/filepath"
	"strings"
)

const mailSubjectPrefix = "[Album Wall] "

type MailService struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
	Enabled  bool
}

func NewMailService() *MailService {
	host := os.Getenv("SMTP_HOST")
	port := os.Getenv("SMTP_PORT")
	user := os.Getenv("SMTP_USER")
	pass := os.Getenv("SMTP_PASS")
	from := os.Getenv("SMTP_FROM")

	enabled := host != "" && port != "" && user != "" && pass != "" && from != ""
	if !enabled {
		log.Println("MailService disabled: missing SMTP environment variables")
	}

	return &MailService{
		Host:     host,
		Port:     port,
		Username: user,
		Password: pass,
		From:     from,
		Enabled:  enabled,
	}
}

func (s *MailService) sendAsync(to []string, subject string, body string) {
	if !s.Enabled {
		return
	}

	go func() {
		auth := smtp.PlainAuth("", s.Username, s.Password, s.Host)
		addr := fmt.Sprintf("%s:%s", s.Host, s.Port)

		mime := "MIME-version: 1.0;\nContent-Type: text/html; charset=\"UTF-8\";\n\n"
		msg := []byte(fmt.Sprintf("To: %s\r\n"+
			"From: Album Wall <%s>\r\n"+
			"Subject: %s\r\n"+
			"%s\r\n%s", strings.Join(to, ","), s.From, subject, mime, body))

		if err := smtp.SendMail(addr, auth, s.From, to, msg); err != nil {
			log.Printf("Failed to send email to %v: %v", to, err)
		}
	}()
}

func (s *MailService) parseTemplate(templateName string, data interface{}) (string, error) {
	path := filepath.Join("web", "templates", "email", templateName)
	t, err := template.ParseFiles(path)
	if err != nil {
		return "", fmt.Errorf("failed to parse template %s: %w", templateName, err)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template %s: %w", templateName, err)
	}
	return buf.String(), nil
}

// SendConfirmEmail 注册/重发的邮箱确认码
func (s *MailService) SendConfirmEmail(email, username, code string) {
	body, err := s.parseTemplate("confirm.html", map[string]string{
		"Username": username,
		"Code":     code,
	})
	if err != nil {
		log.Printf("Error rendering confirm email: %v", err)
		return
	}
	s.sendAsync([]string{email}, mailSubjectPrefix+"Confirm your account", body)
}

// SendResetPasswordEmail 密码重置码
func (s *MailService) SendResetPasswordEmail(email, code string) {
	body, err := s.parseTemplate("reset.html", map[string]string{
		"Code": code,
	})
	if err != nil {
		log.Printf("Error rendering reset email: %v", err)
		return
	}
	s.sendAsync([]string{email}, mailSubjectPrefix+"Reset your password", body)
}

// SendChangeEmailEmail 换绑邮箱确认码,发往新地址
func (s *MailService) SendChangeEmailEmail(email, code string) {
	body, err := s.parseTemplate("change_email.html", map[string]string{
		"Code": code,
	})
	if err != nil {
		log.Printf("Error rendering change email: %v", err)
		return
	}
	s.sendAsync([]string{email}, mailSubjectPrefix+"Confirm your new email address", body)
}
