package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/telkom-contracts/constants"
)

// ExtractionRun is one persisted extraction, as stored in extraction_runs.
type ExtractionRun struct {
	ID              uuid.UUID           `json:"id"`
	Source          string              `json:"source"`
	ContentHash     string              `json:"content_hash"`
	ContractNumber  *string             `json:"contract_number,omitempty"`
	CustomerName    *string             `json:"customer_name,omitempty"`
	PaymentMethod   string              `json:"payment_method"`
	Status          constants.RunStatus `json:"status"`
	ConfidenceScore float64             `json:"confidence_score"`
	ProcessingMS    int64               `json:"processing_ms"`
	Record          json.RawMessage     `json:"record,omitempty"`
	CreatedAt       time.Time           `json:"created_at"`
}
