package notify

import (
	"text/template"

	"spec11/internal/core/mailtext"
)

var funcs = template.FuncMap{
	"label":  mailtext.Label,
	"domain": mailtext.Domain,
}

var monthlyTmpl = template.Must(template.New("monthly").Funcs(funcs).Parse(`Dear registrar partner,

{{.Registry}} previously notified you when the following domains managed by your
registrar were flagged for potential security concerns.

The following domains that you manage continue to be flagged by our analysis as of {{.Date}}.
Please review them and take appropriate action.

{{range .Matches}}  {{domain .DomainName}}  {{label .ThreatType}}{{if .PlatformType}} ({{label .PlatformType}}){{end}}
{{end}}
If you believe any of these domains were flagged in error, reply to this message.

Regards,
{{.Registry}}
`))

var dailyTmpl = template.Must(template.New("daily").Funcs(funcs).Parse(`Dear registrar partner,

{{.Registry}} conducts a daily analysis of all domains registered in its TLDs to
identify potential security concerns. On {{.Date}} the following domains that your
registrar manages were newly flagged for potential security concerns:

{{range .Matches}}  {{domain .DomainName}}  {{label .ThreatType}}{{if .PlatformType}} ({{label .PlatformType}}){{end}}
{{end}}
Please review these domains and take appropriate action.

Regards,
{{.Registry}}
`))
