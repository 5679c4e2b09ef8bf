package types

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResource_InstanceDetails(t *testing.T) {
	raw := `{
		"id": "i-0abc",
		"name": "web-1",
		"resourceType": "instance",
		"cloudType": "aws",
		"data": {
			"instanceId": "i-0abc",
			"instanceType": "t3.micro",
			"imageId": "ami-123",
			"publicIpAddress": "203.0.113.7",
			"state": {"code": 16, "name": "running"}
		}
	}`

	var r Resource
	require.NoError(t, json.Unmarshal([]byte(raw), &r))

	assert.Equal(t, KindInstance, r.Kind())
	assert.Equal(t, InstanceDetails{
		InstanceID:   "i-0abc",
		InstanceType: "t3.micro",
		ImageID:      "ami-123",
		PublicIP:     "203.0.113.7",
		State:        "running",
	}, r.Details)
	assert.Equal(t, "i-0abc t3.micro running 203.0.113.7", r.Details.Summary())
	assert.Equal(t, CloudAWS, r.CloudType)
	assert.Nil(t, r.Extra)
}

func TestResource_BucketDetails(t *testing.T) {
	tests := []struct {
		name        string
		raw         string
		wantSummary string
	}{
		{
			name:        "public bucket",
			raw:         `{"resourceType": "STORAGE_BUCKET", "data": {"name": "logs", "creationDate": "2024-01-02", "policyStatus": {"isPublic": true}}}`,
			wantSummary: "bucket logs (public)",
		},
		{
			name:        "private bucket",
			raw:         `{"resourceType": "BUCKET", "data": {"name": "backups"}}`,
			wantSummary: "bucket backups",
		},
		{
			name:        "no data",
			raw:         `{"resourceType": "BUCKET"}`,
			wantSummary: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var r Resource
			require.NoError(t, json.Unmarshal([]byte(tt.raw), &r))
			assert.Equal(t, KindBucket, r.Kind())
			assert.Equal(t, tt.wantSummary, r.Details.Summary())
		})
	}
}

func TestResource_GenericKeepsRawData(t *testing.T) {
	var r Resource
	require.NoError(t, json.Unmarshal([]byte(`{"resourceType": "SECURITY_GROUP", "data": {"groupId": "sg-1"}}`), &r))

	require.Equal(t, KindGeneric, r.Kind())
	details, ok := r.Details.(GenericDetails)
	require.True(t, ok)
	assert.JSONEq(t, `{"groupId": "sg-1"}`, string(details.Raw))
	assert.Empty(t, details.Summary())
}

func TestResource_ZeroValueIsGeneric(t *testing.T) {
	assert.Equal(t, KindGeneric, Resource{}.Kind())
}

func TestResource_UnknownFieldsRoundTrip(t *testing.T) {
	raw := `{
		"id": "sg-1",
		"name": "default",
		"account": "prod",
		"accountId": "123456789012",
		"region": "AWS Virginia",
		"regionId": "us-east-1",
		"resourceType": "SECURITY_GROUP",
		"resourceApiName": "aws-ec2-describe-security-groups",
		"cloudServiceName": "Amazon VPC",
		"cloudType": "aws",
		"resourceTs": 1700000000000,
		"additionalInfo": {"owner": "team-a"}
	}`

	var r Resource
	require.NoError(t, json.Unmarshal([]byte(raw), &r))
	require.Len(t, r.Extra, 2)
	assert.JSONEq(t, `1700000000000`, string(r.Extra["resourceTs"]))

	out, err := json.Marshal(r)
	require.NoError(t, err)
	assert.JSONEq(t, raw, string(out))
}

func TestResource_ExtraCannotShadowKnownFields(t *testing.T) {
	r := Resource{
		ID:    "real",
		Extra: map[string]json.RawMessage{"id": json.RawMessage(`"shadow"`)},
	}

	out, err := json.Marshal(r)
	require.NoError(t, err)

	var decoded Resource
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.Equal(t, "real", decoded.ID)
}

func TestAlert_TimeHelpers(t *testing.T) {
	a := Alert{FirstSeen: 1700000000000, LastSeen: 1700000360500}

	assert.Equal(t, time.Date(2023, 11, 14, 22, 13, 20, 0, time.UTC), a.FirstSeenAt())
	assert.Equal(t, time.Date(2023, 11, 14, 22, 19, 20, int(500*time.Millisecond), time.UTC), a.LastSeenAt())
	assert.True(t, a.AlertedAt().IsZero())
}

func TestAlertList_IDs(t *testing.T) {
	list := AlertList{Items: []Alert{{ID: "a"}, {ID: "b"}, {ID: "a"}}}
	assert.Equal(t, []string{"a", "b", "a"}, list.IDs())
	assert.Empty(t, AlertList{}.IDs())
}

func TestPolicyNames_Lookup(t *testing.T) {
	names := NewPolicyNames([]Policy{
		{PolicyID: "pol-1", Name: "Public bucket"},
		{PolicyID: "pol-2"},
		{PolicyID: "pol-1", Name: "Public bucket v2"},
	})

	assert.Equal(t, "Public bucket v2", names.Lookup("pol-1"))
	assert.Equal(t, "pol-2", names.Lookup("pol-2"))
	assert.Equal(t, "pol-404", names.Lookup("pol-404"))
}
