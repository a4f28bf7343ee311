package domain

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ExtractedBillData is the flat record returned by the extraction model for a water bill.
type ExtractedBillData struct {
	DueDateAmount Number  `json:"due_date_amount"`
	WaterUsageM3  Number  `json:"water_usage_m3"`
	Lab1Tons      Number  `json:"lab1_tons"`
	Lab2Tons      Number  `json:"lab2_tons"`
	ServicePeriod *string `json:"service_period"`
}

// UnmarshalJSON accepts any JSON type for service_period. Only a string is kept;
// a number, object or null leaves the period absent so that a bad period never
// fails the record, it only blanks the period-derived fields.
func (d *ExtractedBillData) UnmarshalJSON(data []byte) error {
	type plain ExtractedBillData
	var raw struct {
		plain
		ServicePeriod json.RawMessage `json:"service_period"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*d = ExtractedBillData(raw.plain)
	d.ServicePeriod = periodText(raw.ServicePeriod)
	return nil
}

func periodText(raw json.RawMessage) *string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '"' {
		return nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil
	}
	return &s
}

// Period returns the service period text, or "" when absent.
func (d ExtractedBillData) Period() string {
	if d.ServicePeriod == nil {
		return ""
	}
	return *d.ServicePeriod
}

// SubunitUsages returns the lab usages in allocation order.
func (d ExtractedBillData) SubunitUsages() []decimal.Decimal {
	return []decimal.Decimal{d.Lab1Tons.Decimal(), d.Lab2Tons.Decimal()}
}

// Generation is the persisted record of one generated notice document.
type Generation struct {
	ID              uuid.UUID        `db:"id" json:"id"`
	TemplateName    string           `db:"template_name" json:"template_name"`
	ServicePeriod   string           `db:"service_period" json:"service_period"`
	TotalAmount     decimal.Decimal  `db:"total_amount" json:"total_amount"`
	TotalUsage      decimal.Decimal  `db:"total_usage" json:"total_usage"`
	Lab1Usage       decimal.Decimal  `db:"lab1_usage" json:"lab1_usage"`
	Lab2Usage       decimal.Decimal  `db:"lab2_usage" json:"lab2_usage"`
	UnitPrice       decimal.Decimal  `db:"unit_price" json:"unit_price"`
	ChargedAmount   decimal.Decimal  `db:"charged_amount" json:"charged_amount"`
	AmountInWords   string           `db:"amount_in_words" json:"amount_in_words"`
	OutputBucket    string           `db:"output_bucket" json:"output_bucket"`
	OutputKey       string           `db:"output_key" json:"output_key"`
	OutputSize      int64            `db:"output_size" json:"output_size"`
	Status          GenerationStatus `db:"status" json:"status"`
	Warnings        string           `db:"warnings" json:"warnings"`
	ErrorMessage    string           `db:"error_message" json:"error_message"`
	ExtractionModel string           `db:"extraction_model" json:"extraction_model"`
	SourceFileName  string           `db:"source_file_name" json:"source_file_name"`
	CreatedAt       time.Time        `db:"created_at" json:"created_at"`
}
