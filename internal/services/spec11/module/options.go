package module

import (
	"time"

	"spec11/internal/platform/config"
	"spec11/internal/services/spec11/service"
)

// Snapshot sources
const (
	SourceFile = "file"
	SourcePG   = "pg"
	SourceCH   = "ch"
)

// Job status sources
const (
	JobsDataflow = "dataflow"
	JobsPG       = "pg"
)

// Notifiers
const (
	NotifierSMTP = "smtp"
	NotifierLog  = "log"
)

// Options for the spec11 module
type Options struct {
	RegistryName   string
	LookbackMonths int

	// TriggerToken guards the publish route when set
	TriggerToken string

	Source    string
	ReportDir string

	Jobs         string
	DoneMarker   string
	FailedMarker string

	DataflowURL     string
	DataflowProject string
	DataflowRegion  string
	DataflowToken   string
	DataflowTimeout time.Duration

	Notifier     string
	SMTPAddr     string
	SMTPUser     string
	SMTPPassword string
	From         string
	ReplyTo      string
	AlertTo      []string
	BCC          []string
}

// FromConfig fills options from environment
// CORE_SPEC11_REGISTRY_NAME (default "Registry") prefixes report subjects
// CORE_SPEC11_LOOKBACK_MONTHS (default 1) bounds the daily baseline search
// CORE_SPEC11_TRIGGER_TOKEN (default empty, open) is the bearer token the publish route requires
// CORE_SPEC11_SOURCE (default "file") selects where snapshots are read: "file", "pg", "ch"
// CORE_SPEC11_REPORT_DIR (default "./reports") is the root of the report files for the file source
// CORE_SPEC11_JOBS (default "dataflow") selects the job status source: "dataflow", "pg"
// CORE_SPEC11_DONE_MARKER / CORE_SPEC11_FAILED_MARKER override the terminal state strings
// CORE_SPEC11_DATAFLOW_URL / _PROJECT / _REGION / _TOKEN / _TIMEOUT configure the Dataflow client
// CORE_SPEC11_NOTIFIER (default "log") selects delivery: "smtp", "log"
// CORE_SPEC11_SMTP_ADDR / _USER / _PASSWORD configure the relay
// CORE_SPEC11_FROM, CORE_SPEC11_REPLY_TO, CORE_SPEC11_ALERT_TO (csv), CORE_SPEC11_BCC (csv) address the emails
func FromConfig(cfg config.Conf) Options {
	n := cfg.Prefix("CORE_SPEC11_")
	return Options{
		RegistryName:   n.MayString("REGISTRY_NAME", "Registry"),
		LookbackMonths: n.MayInt("LOOKBACK_MONTHS", 1),
		TriggerToken:   n.MayString("TRIGGER_TOKEN", ""),

		Source:    n.MayEnum("SOURCE", SourceFile, SourceFile, SourcePG, SourceCH),
		ReportDir: n.MayString("REPORT_DIR", "./reports"),

		Jobs:         n.MayEnum("JOBS", JobsDataflow, JobsDataflow, JobsPG),
		DoneMarker:   n.MayString("DONE_MARKER", service.DefaultDoneMarker),
		FailedMarker: n.MayString("FAILED_MARKER", service.DefaultFailedMarker),

		DataflowURL:     n.MayString("DATAFLOW_URL", "https://dataflow.googleapis.com"),
		DataflowProject: n.MayString("DATAFLOW_PROJECT", ""),
		DataflowRegion:  n.MayString("DATAFLOW_REGION", "us-east1"),
		DataflowToken:   n.MayString("DATAFLOW_TOKEN", ""),
		DataflowTimeout: n.MayDuration("DATAFLOW_TIMEOUT", 10*time.Second),

		Notifier:     n.MayEnum("NOTIFIER", NotifierLog, NotifierSMTP, NotifierLog),
		SMTPAddr:     n.MayString("SMTP_ADDR", "localhost:25"),
		SMTPUser:     n.MayString("SMTP_USER", ""),
		SMTPPassword: n.MayString("SMTP_PASSWORD", ""),
		From:         n.MayString("FROM", ""),
		ReplyTo:      n.MayString("REPLY_TO", ""),
		AlertTo:      n.MayCSV("ALERT_TO", nil),
		BCC:          n.MayCSV("BCC", nil),
	}
}

// ServiceConfig maps options onto the scheduler config
func (o Options) ServiceConfig() service.Config {
	return service.Config{
		RegistryName:   o.RegistryName,
		LookbackMonths: o.LookbackMonths,
	}
}
