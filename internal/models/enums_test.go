package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePropertyType(t *testing.T) {
	cases := map[string]PropertyType{
		"Apartment":  PropertyTypeApartment,
		"house":      PropertyTypeHouse,
		" STUDIO ":   PropertyTypeStudio,
		"4":          PropertyTypeVilla,
		"commercial": PropertyTypeCommercial,
	}
	for in, want := range cases {
		got, err := ParsePropertyType(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	for _, bad := range []string{"", "0", "6", "-1", "castle", "1.0"} {
		_, err := ParsePropertyType(bad)
		assert.Error(t, err, bad)
	}
}

func TestParseListingStatus(t *testing.T) {
	cases := map[string]ListingStatus{
		"ForSale": ListingStatusForSale,
		"forrent": ListingStatusForRent,
		"3":       ListingStatusSold,
		"RENTED":  ListingStatusRented,
	}
	for in, want := range cases {
		got, err := ParseListingStatus(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	for _, bad := range []string{"", "0", "5", "for sale", "pending"} {
		_, err := ParseListingStatus(bad)
		assert.Error(t, err, bad)
	}
}

func TestEnumMarshalText(t *testing.T) {
	text, err := PropertyTypeVilla.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "Villa", string(text))

	_, err = PropertyType(0).MarshalText()
	assert.Error(t, err)
	_, err = ListingStatus(9).MarshalText()
	assert.Error(t, err)

	assert.Equal(t, "PropertyType(7)", PropertyType(7).String())
	assert.Equal(t, "ListingStatus(0)", ListingStatus(0).String())

	// an invalid code never serializes silently
	_, err = json.Marshal(struct {
		Type PropertyType `json:"type"`
	}{Type: 42})
	assert.Error(t, err)
}

func TestEnumUnmarshalJSON(t *testing.T) {
	var v struct {
		Type   PropertyType  `json:"type"`
		Status ListingStatus `json:"status"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"type":"apartment","status":2}`), &v))
	assert.Equal(t, PropertyTypeApartment, v.Type)
	assert.Equal(t, ListingStatusForRent, v.Status)

	assert.Error(t, json.Unmarshal([]byte(`{"type":9}`), &v))
	assert.Error(t, json.Unmarshal([]byte(`{"status":"Leased"}`), &v))
	assert.Error(t, json.Unmarshal([]byte(`{"type":true}`), &v))
}

func TestEnumListsAreComplete(t *testing.T) {
	assert.Len(t, PropertyTypes(), len(propertyTypeNames))
	for _, pt := range PropertyTypes() {
		assert.True(t, pt.IsValid())
	}
	assert.Len(t, ListingStatuses(), len(listingStatusNames))
	for _, s := range ListingStatuses() {
		assert.True(t, s.IsValid())
	}
}
