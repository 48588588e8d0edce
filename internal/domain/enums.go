package domain

import "strings"

type Bureau string

const (
    BureauExperian   Bureau = "experian"
    BureauEquifax    Bureau = "equifax"
    BureauTransUnion Bureau = "transunion"
)

var Bureaus = []Bureau{BureauExperian, BureauEquifax, BureauTransUnion}

// ParseBureau accepts any casing and the common "Trans Union" spelling.
func ParseBureau(s string) (Bureau, error) {
    b := Bureau(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), " ", ""))
    for _, known := range Bureaus {
        if b == known {
            return b, nil
        }
    }
    return "", Invalidf("bureau", "unknown bureau %q", s)
}

func (b Bureau) DisplayName() string {
    switch b {
    case BureauExperian:
        return "Experian"
    case BureauEquifax:
        return "Equifax"
    case BureauTransUnion:
        return "TransUnion"
    }
    return string(b)
}

// MailingAddress is where written disputes for the bureau are sent.
func (b Bureau) MailingAddress() []string {
    switch b {
    case BureauExperian:
        return []string{"Experian", "P.O. Box 4500", "Allen, TX 75013"}
    case BureauEquifax:
        return []string{"Equifax Information Services LLC", "P.O. Box 740256", "Atlanta, GA 30374"}
    case BureauTransUnion:
        return []string{"TransUnion LLC Consumer Dispute Center", "P.O. Box 2000", "Chester, PA 19016"}
    }
    return nil
}

type ClientStatus string

const (
    ClientPending   ClientStatus = "pending"
    ClientActive    ClientStatus = "active"
    ClientInactive  ClientStatus = "inactive"
    ClientCompleted ClientStatus = "completed"
)

func (s ClientStatus) Valid() bool {
    switch s {
    case ClientPending, ClientActive, ClientInactive, ClientCompleted:
        return true
    }
    return false
}

type DisputePriority string

const (
    PriorityLow    DisputePriority = "low"
    PriorityMedium DisputePriority = "medium"
    PriorityHigh   DisputePriority = "high"
)

func (p DisputePriority) Valid() bool {
    return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

type LetterTemplate string

const (
    TemplateDispute              LetterTemplate = "dispute"
    TemplateGoodwill             LetterTemplate = "goodwill"
    TemplateDebtValidation       LetterTemplate = "debt_validation"
    TemplateMethodOfVerification LetterTemplate = "method_of_verification"
)

func (t LetterTemplate) Valid() bool {
    switch t {
    case TemplateDispute, TemplateGoodwill, TemplateDebtValidation, TemplateMethodOfVerification:
        return true
    }
    return false
}

type LetterStatus string

const (
    LetterQueued     LetterStatus = "queued"
    LetterGenerating LetterStatus = "generating"
    LetterReady      LetterStatus = "ready"
    LetterSent       LetterStatus = "sent"
    LetterFailed     LetterStatus = "failed"
)

type PaymentStatus string

const (
    PaymentPending   PaymentStatus = "pending"
    PaymentCompleted PaymentStatus = "completed"
    PaymentFailed    PaymentStatus = "failed"
    PaymentRefunded  PaymentStatus = "refunded"
)

func (s PaymentStatus) Valid() bool {
    switch s {
    case PaymentPending, PaymentCompleted, PaymentFailed, PaymentRefunded:
        return true
    }
    return false
}
