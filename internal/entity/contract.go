package entity

import (
	"time"

	"github.com/joseph-ayodele/telkom-contracts/constants"
	"github.com/joseph-ayodele/telkom-contracts/internal/utils"
)

// Representative is the person signing on behalf of the customer.
type Representative struct {
	Name     *string `json:"name"`
	Position *string `json:"position"`
}

// ContactPerson is a contact block from either party.
type ContactPerson struct {
	Name     *string `json:"name"`
	Position *string `json:"position"`
	Phone    *string `json:"phone"`
	Email    *string `json:"email"`
}

// FilledCount returns how many fields hold a value.
func (c *ContactPerson) FilledCount() int {
	if c == nil {
		return 0
	}
	n := 0
	for _, f := range []*string{c.Name, c.Position, c.Phone, c.Email} {
		if f != nil && *f != "" {
			n++
		}
	}
	return n
}

// IsEmpty reports whether no field holds a value.
func (c *ContactPerson) IsEmpty() bool {
	return c.FilledCount() == 0
}

func (c *ContactPerson) Clone() *ContactPerson {
	if c == nil {
		return nil
	}
	return &ContactPerson{
		Name:     utils.ClonePtr(c.Name),
		Position: utils.ClonePtr(c.Position),
		Phone:    utils.ClonePtr(c.Phone),
		Email:    utils.ClonePtr(c.Email),
	}
}

type CustomerInfo struct {
	Name           *string         `json:"name"`
	Address        *string         `json:"address"`
	TaxID          *string         `json:"tax_id"`
	Representative *Representative `json:"representative"`
	ContactPerson  *ContactPerson  `json:"contact_person"`
}

// DateRange holds ISO dates (YYYY-MM-DD); either end may be missing.
type DateRange struct {
	Start      *string              `json:"start"`
	End        *string              `json:"end"`
	Confidence constants.Confidence `json:"confidence,omitempty"`
}

// Complete reports whether both ends are set.
func (d DateRange) Complete() bool {
	return d.Start != nil && d.End != nil
}

func (d DateRange) Clone() DateRange {
	return DateRange{Start: utils.ClonePtr(d.Start), End: utils.ClonePtr(d.End), Confidence: d.Confidence}
}

type ContractInfo struct {
	ContractNumber *string    `json:"contract_number"`
	DateRange      *DateRange `json:"date_range"`
}

type ServiceSummary struct {
	ConnectivityCount    int `json:"connectivity_count"`
	NonConnectivityCount int `json:"non_connectivity_count"`
	BundlingCount        int `json:"bundling_count"`
}

// ServiceLineItem is one row of the service table, cells kept as printed.
type ServiceLineItem struct {
	Index          string `json:"index"`
	ServiceName    string `json:"service_name"`
	Quantity       string `json:"quantity"`
	Location       string `json:"location"`
	InstallAddress string `json:"install_address"`
	PIC            string `json:"pic"`
	Bandwidth      string `json:"bandwidth"`
	InstallCost    string `json:"install_cost"`
	MonthlyCost    string `json:"monthly_cost"`
	AnnualCost     string `json:"annual_cost"`
	Notes          string `json:"notes"`
}

type TerminPayment struct {
	Number     int     `json:"number"`
	Period     string  `json:"period"`
	Amount     float64 `json:"amount"`
	RawExcerpt string  `json:"raw_excerpt"`
}

type PaymentInfo struct {
	Method           constants.PaymentMethod `json:"method"`
	Description      string                  `json:"description"`
	Confidence       constants.Confidence    `json:"confidence"`
	TerminList       []TerminPayment         `json:"termin_list"`
	TotalTerminCount int                     `json:"total_termin_count"`
	TotalAmount      float64                 `json:"total_amount"`
	RawExcerpt       *string                 `json:"raw_excerpt"`
}

// DefaultPayment is the payment slot before (or without) classification.
func DefaultPayment() PaymentInfo {
	return PaymentInfo{
		Method:     constants.PaymentUnknown,
		Confidence: constants.ConfidenceLow,
		TerminList: []TerminPayment{},
	}
}

// ContractRecord is the extraction result for one contract document.
type ContractRecord struct {
	Customer              CustomerInfo      `json:"customer"`
	Contract              ContractInfo      `json:"contract"`
	ServiceSummary        ServiceSummary    `json:"service_summary"`
	ServiceItems          []ServiceLineItem `json:"service_items"`
	Payment               PaymentInfo       `json:"payment"`
	TelkomContact         *ContactPerson    `json:"telkom_contact"`
	DateRange             DateRange         `json:"date_range"`
	ExtractionTimestamp   time.Time         `json:"extraction_timestamp"`
	ProcessingTimeSeconds float64           `json:"processing_time_seconds"`
	ConfidenceScore       float64           `json:"confidence_score"`
	SourceFiles           []string          `json:"source_files"`
}

// NewContractRecord returns an all-default record.
func NewContractRecord() *ContractRecord {
	return &ContractRecord{
		ServiceItems:        []ServiceLineItem{},
		Payment:             DefaultPayment(),
		ExtractionTimestamp: time.Now().UTC(),
		SourceFiles:         []string{},
	}
}

// SyncContractDates mirrors the top-level date range into the contract section.
func (r *ContractRecord) SyncContractDates() {
	if r.DateRange.Start == nil && r.DateRange.End == nil {
		r.Contract.DateRange = nil
		return
	}
	dr := r.DateRange.Clone()
	r.Contract.DateRange = &dr
}

// Clone returns a deep copy.
func (r *ContractRecord) Clone() *ContractRecord {
	if r == nil {
		return nil
	}
	out := *r

	out.Customer.Name = utils.ClonePtr(r.Customer.Name)
	out.Customer.Address = utils.ClonePtr(r.Customer.Address)
	out.Customer.TaxID = utils.ClonePtr(r.Customer.TaxID)
	if r.Customer.Representative != nil {
		out.Customer.Representative = &Representative{
			Name:     utils.ClonePtr(r.Customer.Representative.Name),
			Position: utils.ClonePtr(r.Customer.Representative.Position),
		}
	}
	out.Customer.ContactPerson = r.Customer.ContactPerson.Clone()

	out.Contract.ContractNumber = utils.ClonePtr(r.Contract.ContractNumber)
	if r.Contract.DateRange != nil {
		dr := r.Contract.DateRange.Clone()
		out.Contract.DateRange = &dr
	}

	out.ServiceItems = append([]ServiceLineItem{}, r.ServiceItems...)
	out.Payment.TerminList = append([]TerminPayment{}, r.Payment.TerminList...)
	out.Payment.RawExcerpt = utils.ClonePtr(r.Payment.RawExcerpt)
	out.TelkomContact = r.TelkomContact.Clone()
	out.DateRange = r.DateRange.Clone()
	out.SourceFiles = append([]string{}, r.SourceFiles...)
	return &out
}

// Page2Result is what the second page contributes to a record.
type Page2Result struct {
	DateRange             DateRange
	TelkomContact         *ContactPerson
	CustomerContact       *ContactPerson
	ProcessingTimeSeconds float64
	SourceFiles           []string
}
