package letters

import (
    "bytes"
    "fmt"
    "strings"
    "text/template"
    "time"

    "creditdesk/internal/domain"
    "creditdesk/internal/ports"
)

var subjects = map[domain.LetterTemplate]string{
    domain.TemplateDispute:              "Request for Investigation of Inaccurate Information",
    domain.TemplateGoodwill:             "Goodwill Adjustment Request",
    domain.TemplateDebtValidation:       "Request for Debt Validation",
    domain.TemplateMethodOfVerification: "Request for Method of Verification",
}

const header = `{{.Client.FullName}}
{{with .Client.Address}}{{.}}
{{end}}{{with .CityLine}}{{.}}
{{end}}
{{.Date}}

{{range .BureauAddress}}{{.}}
{{end}}
RE: {{.Subject}}
{{with .Client.SSNLast4}}SSN (last 4): {{.}}
{{end}}{{with .Client.DateOfBirth}}Date of birth: {{.Format "01/02/2006"}}
{{end}}
To Whom It May Concern:

`

const footer = `
Sincerely,

{{.Client.FullName}}
{{with .Sender.CompanyName}}
Prepared with the assistance of {{.}}
{{end}}`

var bodies = map[domain.LetterTemplate]string{
    domain.TemplateDispute: `I am writing to dispute the following information in my file. The item listed below is inaccurate or incomplete.

Creditor: {{.AccountName}}
{{with .AccountNumber}}Account number: {{.}}
{{end}}Reason: {{.Reason}}

Under the Fair Credit Reporting Act, 15 U.S.C. § 1681i, you are required to conduct a reasonable reinvestigation of this item within 30 days of receipt and to delete or correct any information that cannot be verified. Please send me written notice of the results.
`,
    domain.TemplateGoodwill: `I am writing about the account with {{.AccountName}}{{with .AccountNumber}} ({{.}}){{end}}. I have valued this relationship and have worked to keep my account in good standing.

{{.Reason}}

I respectfully ask that you consider a goodwill adjustment to remove the negative reporting associated with this account.
`,
    domain.TemplateDebtValidation: `This letter is sent in response to a notice I received regarding the account with {{.AccountName}}{{with .AccountNumber}} ({{.}}){{end}}.

Under the Fair Debt Collection Practices Act, 15 U.S.C. § 1692g, I request validation of this debt: the amount owed, the name of the original creditor, and proof that you are licensed to collect in my state. Until the debt is validated, please cease collection and do not report it to any consumer reporting agency.

{{with .Reason}}Additional details: {{.}}
{{end}}`,
    domain.TemplateMethodOfVerification: `I previously disputed the account with {{.AccountName}}{{with .AccountNumber}} ({{.}}){{end}} and was told the information was verified.

Under 15 U.S.C. § 1681i(a)(7), please provide a description of the procedure used to determine the accuracy of this item, including the business name, address and telephone number of any furnisher contacted.

{{with .Reason}}Original dispute reason: {{.}}
{{end}}`,
}

var compiled = map[domain.LetterTemplate]*template.Template{}

func init() {
    for name, body := range bodies {
        compiled[name] = template.Must(template.New(string(name)).Parse(header + body + footer))
    }
}

type renderData struct {
    Client        domain.Client
    Sender        domain.User
    Date          string
    CityLine      string
    BureauAddress []string
    Subject       string
    AccountName   string
    AccountNumber string
    Reason        string
}

// Subject returns the subject line used for a template.
func Subject(t domain.LetterTemplate) string { return subjects[t] }

// Render produces the letter body for r, dated now.
func Render(r ports.LetterRender, now time.Time) (string, error) {
    tmpl, ok := compiled[r.Letter.Template]
    if !ok {
        return "", domain.Invalidf("template", "unknown template %q", r.Letter.Template)
    }
    data := renderData{
        Client:        r.Client,
        Sender:        r.Sender,
        Date:          now.Format("January 2, 2006"),
        BureauAddress: r.Letter.Bureau.MailingAddress(),
        Subject:       r.Letter.Subject,
    }
    var loc []string
    if r.Client.City != "" {
        loc = append(loc, r.Client.City)
    }
    if st := strings.TrimSpace(r.Client.State + " " + r.Client.ZipCode); st != "" {
        loc = append(loc, st)
    }
    data.CityLine = strings.Join(loc, ", ")
    if r.Dispute != nil {
        data.AccountName = r.Dispute.AccountName
        data.AccountNumber = r.Dispute.AccountNumber
        data.Reason = r.Dispute.Reason
    }
    if data.AccountName == "" {
        data.AccountName = "the account referenced above"
    }
    var buf bytes.Buffer
    if err := tmpl.Execute(&buf, data); err != nil {
        return "", fmt.Errorf("render %s letter: %w", r.Letter.Template, err)
    }
    return buf.String(), nil
}
