package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

type RequestStatus string

const (
	StatusNew                         RequestStatus = "new"
	StatusPendingDocuments            RequestStatus = "pending_documents"
	StatusPendingLandlordVerification RequestStatus = "pending_landlord_verification"
	StatusPendingCreditCheck          RequestStatus = "pending_credit_check"
	StatusPendingDeposit              RequestStatus = "pending_deposit"
	StatusApproved                    RequestStatus = "approved"
	StatusScheduledActivation         RequestStatus = "scheduled_activation"
	StatusActive                      RequestStatus = "active"
	StatusSuspended                   RequestStatus = "suspended"
	StatusCompleted                   RequestStatus = "completed"
	StatusCancelled                   RequestStatus = "cancelled"
)

// AllRequestStatuses lists every status in workflow display order.
var AllRequestStatuses = []RequestStatus{
	StatusNew,
	StatusPendingDocuments,
	StatusPendingLandlordVerification,
	StatusPendingCreditCheck,
	StatusPendingDeposit,
	StatusApproved,
	StatusScheduledActivation,
	StatusActive,
	StatusSuspended,
	StatusCompleted,
	StatusCancelled,
}

func (s RequestStatus) IsValid() bool {
	for _, status := range AllRequestStatuses {
		if s == status {
			return true
		}
	}
	return false
}

func (s RequestStatus) String() string {
	return string(s)
}

func ParseRequestStatus(value string) (RequestStatus, error) {
	status := RequestStatus(strings.ToLower(strings.TrimSpace(value)))
	if !status.IsValid() {
		return "", fmt.Errorf("unknown request status %q", value)
	}
	return status, nil
}

func (s *RequestStatus) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("request status must be a string: %w", err)
	}
	parsed, err := ParseRequestStatus(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func (s RequestStatus) Value() (driver.Value, error) {
	if !s.IsValid() {
		return nil, fmt.Errorf("unknown request status %q", string(s))
	}
	return string(s), nil
}

func (s *RequestStatus) Scan(value any) error {
	var raw string
	switch v := value.(type) {
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		return fmt.Errorf("RequestStatus: Scan failed, unexpected type %T", value)
	}
	parsed, err := ParseRequestStatus(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

type PropertyUseType string

const (
	PropertyRent          PropertyUseType = "rent"
	PropertyOwnerOccupied PropertyUseType = "owner_occupied"
	PropertyOwnerLeasing  PropertyUseType = "owner_leasing"
)

func (p PropertyUseType) IsValid() bool {
	switch p {
	case PropertyRent, PropertyOwnerOccupied, PropertyOwnerLeasing:
		return true
	}
	return false
}

// RequiresLease is true for tenants; owners supply a deed instead.
func (p PropertyUseType) RequiresLease() bool {
	return p == PropertyRent
}

func (p PropertyUseType) RequiresDeed() bool {
	return p == PropertyOwnerOccupied || p == PropertyOwnerLeasing
}

type ServiceTerritory string

const (
	TerritoryInsideCityLimits  ServiceTerritory = "inside_city_limits"
	TerritoryOutsideCityLimits ServiceTerritory = "outside_city_limits"
)

func (t ServiceTerritory) IsValid() bool {
	return t == TerritoryInsideCityLimits || t == TerritoryOutsideCityLimits
}

type BillTypePreference string

const (
	BillByMail  BillTypePreference = "mail"
	BillByEmail BillTypePreference = "email"
	BillByBoth  BillTypePreference = "both"
)

func (b BillTypePreference) IsValid() bool {
	switch b {
	case BillByMail, BillByEmail, BillByBoth:
		return true
	}
	return false
}

type DocumentKind string

const (
	DocumentLease DocumentKind = "lease"
	DocumentDeed  DocumentKind = "deed"
)

// PathPrefix is the object key folder for the document kind.
func (d DocumentKind) PathPrefix() string {
	switch d {
	case DocumentLease:
		return "leases"
	case DocumentDeed:
		return "deeds"
	}
	return ""
}

const SubmissionSourceWebForm = "web_form"
