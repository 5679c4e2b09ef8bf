package types

import "time"

// AlertStatus is the server-side lifecycle state of an alert.
type AlertStatus string

const (
	AlertStatusOpen      AlertStatus = "open"
	AlertStatusDismissed AlertStatus = "dismissed"
	AlertStatusSnoozed   AlertStatus = "snoozed"
	AlertStatusResolved  AlertStatus = "resolved"
)

// CloudType identifies the cloud provider owning a resource.
type CloudType string

const (
	CloudAll          CloudType = "all"
	CloudAWS          CloudType = "aws"
	CloudAzure        CloudType = "azure"
	CloudGCP          CloudType = "gcp"
	CloudAlibabaCloud CloudType = "alibaba_cloud"
	CloudOCI          CloudType = "oci"
	CloudIBM          CloudType = "ibm"
)

// Alert represents a policy violation reported by Prisma Cloud
type Alert struct {
	ID        string      `json:"id"`
	Status    AlertStatus `json:"status"`
	Reason    string      `json:"reason"`
	FirstSeen int64       `json:"firstSeen"`
	LastSeen  int64       `json:"lastSeen"`
	AlertTime int64       `json:"alertTime"`
	PolicyID  string      `json:"policyId"`
	Resource  Resource    `json:"resource"`
}

// FirstSeenAt converts the epoch-millisecond firstSeen field.
func (a Alert) FirstSeenAt() time.Time {
	return millis(a.FirstSeen)
}

// LastSeenAt converts the epoch-millisecond lastSeen field.
func (a Alert) LastSeenAt() time.Time {
	return millis(a.LastSeen)
}

// AlertedAt converts the epoch-millisecond alertTime field.
func (a Alert) AlertedAt() time.Time {
	return millis(a.AlertTime)
}

func millis(v int64) time.Time {
	if v == 0 {
		return time.Time{}
	}
	return time.UnixMilli(v).UTC()
}

// AlertList is the body returned by the v2 alert listing.
type AlertList struct {
	TotalRows     int     `json:"totalRows"`
	Items         []Alert `json:"items"`
	NextPageToken string  `json:"nextPageToken,omitempty"`
}

// IDs returns the alert ids in list order.
func (l AlertList) IDs() []string {
	ids := make([]string, 0, len(l.Items))
	for _, item := range l.Items {
		ids = append(ids, item.ID)
	}
	return ids
}
