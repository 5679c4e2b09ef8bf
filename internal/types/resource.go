package types

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// ResourceKind selects the Details variant of a Resource.
type ResourceKind string

const (
	KindInstance ResourceKind = "instance"
	KindBucket   ResourceKind = "bucket"
	KindGeneric  ResourceKind = "generic"
)

// ResourceDetails is the resource-type specific view of Resource.Data.
type ResourceDetails interface {
	Kind() ResourceKind
	// Summary is a one-line human description, empty when nothing useful is known.
	Summary() string
}

// InstanceDetails describes a compute instance.
type InstanceDetails struct {
	InstanceID   string
	InstanceType string
	ImageID      string
	PublicIP     string
	State        string
}

func (InstanceDetails) Kind() ResourceKind { return KindInstance }

func (d InstanceDetails) Summary() string {
	parts := make([]string, 0, 4)
	for _, p := range []string{d.InstanceID, d.InstanceType, d.State, d.PublicIP} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

// BucketDetails describes an object storage bucket.
type BucketDetails struct {
	BucketName   string
	CreationDate string
	Public       bool
}

func (BucketDetails) Kind() ResourceKind { return KindBucket }

func (d BucketDetails) Summary() string {
	if d.BucketName == "" {
		return ""
	}
	if d.Public {
		return fmt.Sprintf("bucket %s (public)", d.BucketName)
	}
	return "bucket " + d.BucketName
}

// GenericDetails keeps the untyped payload of any other resource type.
type GenericDetails struct {
	Raw json.RawMessage
}

func (GenericDetails) Kind() ResourceKind { return KindGeneric }

func (GenericDetails) Summary() string { return "" }

// Resource is the cloud resource an alert is raised against. The common
// fields are decoded directly; Details is derived from ResourceType and Data,
// and any field not modeled here is kept in Extra and written back on encode.
type Resource struct {
	RRN              string          `json:"rrn,omitempty"`
	ID               string          `json:"id"`
	Name             string          `json:"name"`
	Account          string          `json:"account"`
	AccountID        string          `json:"accountId"`
	Region           string          `json:"region"`
	RegionID         string          `json:"regionId"`
	ResourceType     string          `json:"resourceType"`
	ResourceAPIName  string          `json:"resourceApiName"`
	CloudServiceName string          `json:"cloudServiceName"`
	URL              string          `json:"url,omitempty"`
	CloudType        CloudType       `json:"cloudType"`
	Data             json.RawMessage `json:"data,omitempty"`

	Details ResourceDetails            `json:"-"`
	Extra   map[string]json.RawMessage `json:"-"`
}

// plainResource has Resource's fields without its JSON methods.
type plainResource Resource

var knownResourceFields = map[string]struct{}{
	"rrn": {}, "id": {}, "name": {}, "account": {}, "accountId": {},
	"region": {}, "regionId": {}, "resourceType": {}, "resourceApiName": {},
	"cloudServiceName": {}, "url": {}, "cloudType": {}, "data": {},
}

func (r *Resource) UnmarshalJSON(b []byte) error {
	var plain plainResource
	if err := json.Unmarshal(b, &plain); err != nil {
		return err
	}

	var all map[string]json.RawMessage
	if err := json.Unmarshal(b, &all); err != nil {
		return err
	}
	for key := range knownResourceFields {
		delete(all, key)
	}
	if len(all) > 0 {
		plain.Extra = all
	}

	*r = Resource(plain)
	r.Details = decodeDetails(r.ResourceType, r.Data)
	return nil
}

func (r Resource) MarshalJSON() ([]byte, error) {
	b, err := json.Marshal(plainResource(r))
	if err != nil || len(r.Extra) == 0 {
		return b, err
	}

	var merged map[string]json.RawMessage
	if err := json.Unmarshal(b, &merged); err != nil {
		return nil, err
	}
	for key, value := range r.Extra {
		if _, known := knownResourceFields[key]; known {
			continue
		}
		merged[key] = value
	}
	return json.Marshal(merged)
}

// Kind reports the Details variant, KindGeneric when none was derived.
func (r Resource) Kind() ResourceKind {
	if r.Details == nil {
		return KindGeneric
	}
	return r.Details.Kind()
}

func decodeDetails(resourceType string, data json.RawMessage) ResourceDetails {
	switch strings.ToUpper(strings.TrimSpace(resourceType)) {
	case "INSTANCE":
		fields := gjson.GetManyBytes(data, "instanceId", "instanceType", "imageId", "publicIpAddress", "state.name")
		return InstanceDetails{
			InstanceID:   fields[0].String(),
			InstanceType: fields[1].String(),
			ImageID:      fields[2].String(),
			PublicIP:     fields[3].String(),
			State:        fields[4].String(),
		}
	case "BUCKET", "STORAGE_BUCKET":
		fields := gjson.GetManyBytes(data, "name", "creationDate", "policyStatus.isPublic")
		return BucketDetails{
			BucketName:   fields[0].String(),
			CreationDate: fields[1].String(),
			Public:       fields[2].Bool(),
		}
	default:
		return GenericDetails{Raw: data}
	}
}
