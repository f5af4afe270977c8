package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePublicLand(t *testing.T) {
	tests := []struct {
		name string
		raw  interface{}
		want PublicLand
	}{
		{"nil", nil, PublicLandUnknown},
		{"empty string", "", PublicLandUnknown},
		{"bool true", true, PublicLandPublic},
		{"string true", "true", PublicLandPublic},
		{"bool false", false, PublicLandNotPublic},
		{"string false", "false", PublicLandNotPublic},
		{"other string", "yes", PublicLandNotPublic},
		{"number", float64(1), PublicLandNotPublic},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParsePublicLand(tt.raw))
		})
	}
}

func TestPublicLand_ValueScanRoundTrip(t *testing.T) {
	for _, p := range []PublicLand{PublicLandUnknown, PublicLandPublic, PublicLandNotPublic} {
		v, err := p.Value()
		require.NoError(t, err)

		var got PublicLand
		require.NoError(t, got.Scan(v))
		assert.Equal(t, p, got, p.String())
	}
}

func TestPublicLand_ScanDriverForms(t *testing.T) {
	var p PublicLand

	require.NoError(t, p.Scan(int64(1)))
	assert.Equal(t, PublicLandPublic, p)

	require.NoError(t, p.Scan(int64(0)))
	assert.Equal(t, PublicLandNotPublic, p)

	require.NoError(t, p.Scan([]byte("1")))
	assert.Equal(t, PublicLandPublic, p)

	assert.Error(t, p.Scan([]byte("maybe")))
	assert.Error(t, p.Scan(3.5))
}

func TestPublicLand_JSON(t *testing.T) {
	out, err := json.Marshal(map[string]PublicLand{
		"a": PublicLandUnknown,
		"b": PublicLandPublic,
		"c": PublicLandNotPublic,
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":null,"b":true,"c":false}`, string(out))

	var p PublicLand
	require.NoError(t, json.Unmarshal([]byte(`"true"`), &p))
	assert.Equal(t, PublicLandPublic, p)
	require.NoError(t, json.Unmarshal([]byte(`null`), &p))
	assert.Equal(t, PublicLandUnknown, p)
}

func TestParseCoordinate(t *testing.T) {
	t.Run("nil and blank are null", func(t *testing.T) {
		for _, raw := range []interface{}{nil, "", "   "} {
			got, err := ParseCoordinate(raw)
			require.NoError(t, err)
			assert.Nil(t, got)
		}
	})

	t.Run("numbers are kept including zero", func(t *testing.T) {
		got, err := ParseCoordinate(float64(0))
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, 0.0, *got)

		got, err = ParseCoordinate(45.5)
		require.NoError(t, err)
		assert.Equal(t, 45.5, *got)
	})

	t.Run("numeric strings are parsed", func(t *testing.T) {
		got, err := ParseCoordinate("-110.25")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, -110.25, *got)
	})

	t.Run("garbage is rejected", func(t *testing.T) {
		_, err := ParseCoordinate("north")
		assert.Error(t, err)

		_, err = ParseCoordinate(true)
		assert.Error(t, err)
	})
}

func TestForumTarget_Validate(t *testing.T) {
	assert.Error(t, ForumTarget{}.Validate())
	assert.Error(t, ForumTarget{TopicID: "t", PostID: "p"}.Validate())
	assert.NoError(t, ForumTarget{TopicID: "t"}.Validate())
	assert.NoError(t, ForumTarget{PostID: "p"}.Validate())

	assert.Equal(t, "topic:t", ForumTarget{TopicID: "t"}.String())
	assert.Equal(t, "post:p", ForumTarget{PostID: "p"}.String())
}

func TestIsVisible(t *testing.T) {
	assert.False(t, IsVisible(-4))
	assert.False(t, IsVisible(-3))
	assert.True(t, IsVisible(-2))
	assert.True(t, IsVisible(0))
}

func TestDisplayNameOr(t *testing.T) {
	dn := "Ranger"
	empty := ""
	assert.Equal(t, "Ranger", DisplayNameOr(&dn, "bob"))
	assert.Equal(t, "bob", DisplayNameOr(&empty, "bob"))
	assert.Equal(t, "bob", DisplayNameOr(nil, "bob"))
	assert.Equal(t, "Unknown", DisplayNameOr(nil, ""))
}

func TestLocationRequest_IsPublicLandKey(t *testing.T) {
	tests := []struct {
		name string
		body string
		want PublicLand
	}{
		{"omitted", `{"name":"North Ridge","content":"a nice spot"}`, PublicLandNotPublic},
		{"null", `{"name":"North Ridge","content":"a nice spot","is_public_land":null}`, PublicLandUnknown},
		{"empty string", `{"name":"North Ridge","content":"a nice spot","is_public_land":""}`, PublicLandUnknown},
		{"true", `{"name":"North Ridge","content":"a nice spot","is_public_land":true}`, PublicLandPublic},
		{"string true", `{"name":"North Ridge","content":"a nice spot","is_public_land":"true"}`, PublicLandPublic},
		{"false", `{"name":"North Ridge","content":"a nice spot","is_public_land":false}`, PublicLandNotPublic},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req LocationRequest
			require.NoError(t, json.Unmarshal([]byte(tt.body), &req))
			assert.Equal(t, tt.want, req.IsPublicLand.PublicLand())
		})
	}
}
