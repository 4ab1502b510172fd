// Package domain contains the case model, its lifecycle statuses and the
// store/service contracts for the intake workflow.
package domain

import (
	"time"

	"gorm.io/datatypes"
)

// Status is a case's lifecycle state.
type Status string

const (
	StatusPaymentPending   Status = "PAYMENT_PENDING"
	StatusPaid             Status = "PAID"
	StatusFormPending      Status = "FORM_PENDING"
	StatusDocumentsPending Status = "DOCUMENTS_PENDING"
	StatusReadyForAnalysis Status = "READY_FOR_ANALYSIS"
	StatusInAnalysis       Status = "IN_ANALYSIS"
	StatusReportReady      Status = "REPORT_READY"
	StatusDelivered        Status = "DELIVERED"
	StatusClosed           Status = "CLOSED"

	// Side states, reachable only through analyst action.
	StatusWaitingInfo Status = "WAITING_INFO"
	StatusArchived    Status = "ARCHIVED"
)

// mainPath is the client-driven progression, in order. Side states are not
// part of it and therefore have no rank.
var mainPath = []Status{
	StatusPaymentPending,
	StatusPaid,
	StatusFormPending,
	StatusDocumentsPending,
	StatusReadyForAnalysis,
	StatusInAnalysis,
	StatusReportReady,
	StatusDelivered,
	StatusClosed,
}

var allStatuses = func() map[Status]struct{} {
	m := make(map[Status]struct{}, len(mainPath)+2)
	for _, s := range mainPath {
		m[s] = struct{}{}
	}
	m[StatusWaitingInfo] = struct{}{}
	m[StatusArchived] = struct{}{}
	return m
}()

// ParseStatus validates a raw status string, e.g. from an admin PATCH body.
func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	if _, ok := allStatuses[s]; !ok {
		return "", ErrInvalidStatus
	}
	return s, nil
}

// Rank places a status on the main progression so that "more advanced" is
// comparable. Side states return -1: they never outrank anything and a
// client-held draft can never move a case into them.
func (s Status) Rank() int {
	for i, st := range mainPath {
		if st == s {
			return i
		}
	}
	return -1
}

// Terminal reports whether the case needs no further client interaction.
func (s Status) Terminal() bool {
	switch s {
	case StatusReportReady, StatusDelivered, StatusClosed:
		return true
	}
	return false
}

// Document is one stored upload recorded against a DocumentSpec id.
type Document struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	URL        string    `json:"url"`
	Size       int64     `json:"size"`
	UploadedAt time.Time `json:"uploadedAt"`
}

// Case is the unit of work: one customer's analysis request, identified by
// its human-facing folio. The folio doubles as the client's capability to
// read and drive the case.
type Case struct {
	ID          string                          `gorm:"primaryKey" json:"id"`
	PackageID   string                          `gorm:"not null;index" json:"packageId"`
	Status      Status                          `gorm:"type:text;not null" json:"status"`
	FormData    datatypes.JSONMap               `gorm:"type:jsonb" json:"formData"`
	Documents   datatypes.JSONSlice[Document]   `gorm:"type:jsonb" json:"documents"`
	RiskScore   *int                            `json:"riskScore,omitempty"`
	CreatedAt   time.Time                       `gorm:"not null" json:"createdAt"`
	LastUpdated int64                           `gorm:"not null" json:"lastUpdated"`
}

// TableName sets the database table name.
func (Case) TableName() string { return "cases" }
