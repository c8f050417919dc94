package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-gomail/gomail"
)

const recordJSON = `{
	"jobTitle": "Sr. Data/Engineer!",
	"employerName": "Acme Inc",
	"caseNumber": "A-23-001",
	"socCode": "15-2051",
	"socTitle": "Data Scientists",
	"wageRateFrom": 120000,
	"wageRateTo": 140000,
	"wageUnit": "Year",
	"employmentStartDate": "2024-02-01",
	"employmentEndDate": "2027-01-31",
	"worksiteAddress": "500 Congress Ave",
	"worksiteCity": "Austin",
	"worksiteState": "TX",
	"worksitePostalCode": "78701",
	"totalWorkers": 2
}`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	t.Run("valid config", func(t *testing.T) {
		dir := t.TempDir()
		configFile := writeFile(t, dir, "lca.yaml", `filer:
  publicAccessAddress: 500 Congress Ave, Austin, TX 78701
  postingDays: 12
pdf:
  paper: A4
smtp:
  host: smtp.example.com
  port: 465
  user: hr@example.com
  pass: secret
email:
  from: hr@example.com
  to: postings@example.com
s3:
  bucket: notices
`)

		cfg, err := loadConfig(defaultConfigFile, configFile)
		if err != nil {
			t.Fatalf("loadConfig() error = %v", err)
		}
		if cfg.Filer.PublicAccessAddress != "500 Congress Ave, Austin, TX 78701" {
			t.Errorf("PublicAccessAddress = %q", cfg.Filer.PublicAccessAddress)
		}
		if cfg.Filer.PostingDays != 12 {
			t.Errorf("PostingDays = %d, want 12", cfg.Filer.PostingDays)
		}
		if cfg.SMTP.Port != 465 || cfg.SMTP.Username != "hr@example.com" {
			t.Errorf("SMTP = %+v", cfg.SMTP)
		}
		if cfg.PDF.Paper != "A4" || cfg.S3.Bucket != "notices" {
			t.Errorf("PDF = %+v, S3 = %+v", cfg.PDF, cfg.S3)
		}
	})

	t.Run("missing explicit file", func(t *testing.T) {
		_, err := loadConfig(defaultConfigFile, "/nonexistent/lca.yaml")
		if err == nil {
			t.Error("loadConfig() expected error for missing file")
		}
	})

	t.Run("missing default file", func(t *testing.T) {
		cfg, err := loadConfig(filepath.Join(t.TempDir(), "lca.yaml"), "")
		if err != nil {
			t.Fatalf("loadConfig() error = %v", err)
		}
		if cfg.Filer.PostingDays != 10 || cfg.PDF.Paper != "Letter" || cfg.Output.Dir != "." {
			t.Errorf("defaults not applied: %+v", cfg)
		}
		if cfg.Server.Port != 8080 || cfg.SMTP.Port != 587 || cfg.Log.Level != "info" {
			t.Errorf("defaults not applied: %+v", cfg)
		}
	})

	t.Run("invalid YAML", func(t *testing.T) {
		configFile := writeFile(t, t.TempDir(), "lca.yaml", "{{invalid yaml")
		_, err := loadConfig(defaultConfigFile, configFile)
		if err == nil {
			t.Error("loadConfig() expected error for invalid YAML")
		}
	})

	t.Run("environment overrides", func(t *testing.T) {
		configFile := writeFile(t, t.TempDir(), "lca.yaml", "smtp:\n  pass: from-file\n")
		t.Setenv("LCA_SMTP_PASSWORD", "from-env")
		t.Setenv("LCA_FILER_POSTING_DAYS", "15")
		t.Setenv("LCA_S3_BUCKET", "env-bucket")

		cfg, err := loadConfig(defaultConfigFile, configFile)
		if err != nil {
			t.Fatalf("loadConfig() error = %v", err)
		}
		if cfg.SMTP.Password != "from-env" || cfg.Filer.PostingDays != 15 || cfg.S3.Bucket != "env-bucket" {
			t.Errorf("environment not applied: smtp=%+v filer=%+v s3=%+v", cfg.SMTP, cfg.Filer, cfg.S3)
		}
	})

	t.Run("invalid environment value", func(t *testing.T) {
		t.Setenv("LCA_SERVER_PORT", "not-a-port")
		_, err := loadConfig(filepath.Join(t.TempDir(), "lca.yaml"), "")
		if err == nil {
			t.Error("loadConfig() expected error for invalid LCA_SERVER_PORT")
		}
	})
}

func TestNewLogger(t *testing.T) {
	if _, err := newLogger(LogConfig{Level: "debug", JSON: true}); err != nil {
		t.Errorf("newLogger(debug) error = %v", err)
	}
	if _, err := newLogger(LogConfig{Level: "chatty"}); err == nil {
		t.Error("newLogger(chatty) expected error")
	}
}

type fakeSender struct {
	sent []*gomail.Message
	err  error
}

func (f *fakeSender) DialAndSend(m ...*gomail.Message) error {
	f.sent = append(f.sent, m...)
	return f.err
}

func TestNewMessage(t *testing.T) {
	cfg := &Config{Email: EmailConfig{From: "hr@example.com", To: "postings@example.com"}}
	msg := newMessage(cfg, "LCA notice of filing A-23-001",
		Attachment{Filename: "LCA_A_23_001_Sr_DataEngineer.pdf", Data: []byte("%PDF-1.3 test")})

	var buf bytes.Buffer
	if _, err := msg.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo() error = %v", err)
	}

	got := buf.String()
	checks := []string{
		"From: hr@example.com",
		"To: postings@example.com",
		"Subject: LCA notice of filing A-23-001",
		`filename="LCA_A_23_001_Sr_DataEngineer.pdf"`,
	}
	for _, want := range checks {
		if !strings.Contains(got, want) {
			t.Errorf("message missing %q in:\n%s", want, got)
		}
	}
}

func TestDeliver(t *testing.T) {
	sender := &fakeSender{}
	msg := newMessage(&Config{}, "subject")
	if err := deliver(sender, msg); err != nil {
		t.Fatal(err)
	}
	if len(sender.sent) != 1 {
		t.Errorf("sent %d messages, want 1", len(sender.sent))
	}

	cause := errors.New("connection refused")
	if err := deliver(&fakeSender{err: cause}, msg); !errors.Is(err, cause) {
		t.Errorf("deliver() error = %v, want %v", err, cause)
	}
}

func TestSendEmailRequiresConfiguration(t *testing.T) {
	if err := sendEmail(&Config{}, "subject"); err == nil {
		t.Error("sendEmail() expected error without SMTP host")
	}
}

func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()
	configFile := writeFile(t, t.TempDir(), "lca.yaml", "log:\n  level: error\n")

	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	err := app.Run(append([]string{"lcanotice", "--config", configFile}, args...))
	return out.String(), err
}

func TestGenerateCommand(t *testing.T) {
	dir := t.TempDir()
	recordFile := writeFile(t, dir, "record.json", recordJSON)
	outDir := t.TempDir()

	out, err := runApp(t, "generate", "--out", outDir, recordFile)
	if err != nil {
		t.Fatalf("generate error = %v", err)
	}

	want := filepath.Join(outDir, "LCA_A_23_001_Sr_DataEngineer.pdf")
	if strings.TrimSpace(out) != want {
		t.Errorf("generate printed %q, want %q", out, want)
	}
	data, err := os.ReadFile(want)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Error("generated file is not a PDF")
	}
}

func TestGenerateCommandS3WithoutBucket(t *testing.T) {
	recordFile := writeFile(t, t.TempDir(), "record.json", recordJSON)
	if _, err := runApp(t, "generate", "--s3", recordFile); err == nil {
		t.Error("generate --s3 expected error without bucket")
	}
}

func TestPreviewCommand(t *testing.T) {
	recordFile := writeFile(t, t.TempDir(), "record.yaml", `jobTitle: QA Analyst
employerName: Acme Inc
caseNumber: I-200-1
socCode: 15-1253
socTitle: Software Quality Assurance Analysts and Testers
wageRateFrom: 45
wageUnit: Hour
employmentStartDate: "2024-05-01"
employmentEndDate: "2025-04-30"
worksiteAddress: 1 Main St
worksiteCity: Dallas
worksiteState: TX
worksitePostalCode: "75201"
`)

	out, err := runApp(t, "preview", recordFile)
	if err != nil {
		t.Fatalf("preview error = %v", err)
	}
	if !strings.HasPrefix(out, "data:application/pdf;filename=LCA_I_200_1_QA_Analyst.pdf;base64,") {
		t.Errorf("preview printed %.80q", out)
	}
}

func TestValidateCommand(t *testing.T) {
	dir := t.TempDir()

	out, err := runApp(t, "validate", writeFile(t, dir, "ok.json", recordJSON))
	if err != nil {
		t.Fatalf("validate error = %v", err)
	}
	if strings.TrimSpace(out) != "LCA_A_23_001_Sr_DataEngineer.pdf: ok" {
		t.Errorf("validate printed %q", out)
	}

	incomplete := strings.Replace(recordJSON, `"socCode": "15-2051",`, "", 1)
	_, err = runApp(t, "validate", writeFile(t, dir, "bad.json", incomplete))
	if err == nil || err.Error() != "missing required field: socCode" {
		t.Errorf("validate error = %v, want missing socCode", err)
	}

	if _, err := runApp(t, "validate"); err == nil {
		t.Error("validate without a record expected error")
	}
}

func TestGlobalFlags(t *testing.T) {
	recordFile := writeFile(t, t.TempDir(), "record.json", recordJSON)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"version short", []string{"-v"}, "lcanotice version " + version},
		{"version long", []string{"--version"}, "lcanotice version " + version},
		{"help", []string{"--help"}, "generate"},
		{"verbose short", []string{"-V", "validate", recordFile}, "LCA_A_23_001_Sr_DataEngineer.pdf: ok"},
		{"verbose long", []string{"--verbose", "validate", recordFile}, "LCA_A_23_001_Sr_DataEngineer.pdf: ok"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := runApp(t, tt.args...)
			if err != nil {
				t.Fatalf("run %v error = %v", tt.args, err)
			}
			if !strings.Contains(out, tt.want) {
				t.Errorf("run %v printed %q, want %q", tt.args, out, tt.want)
			}
		})
	}
}
