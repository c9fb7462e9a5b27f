package main

import (
	"bytes"
	"testing"

	"property-catalog/internal/models"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListCriteria(t *testing.T) {
	cmd := &cobra.Command{Use: "list"}
	var f listFlags
	f.bind(cmd)
	require.NoError(t, cmd.ParseFlags([]string{"--city", "spring", "--type", "house", "--status", "2", "--min-price", "0"}))

	c, err := f.criteria(cmd)
	require.NoError(t, err)
	require.NotNil(t, c.City)
	assert.Equal(t, "spring", *c.City)
	require.NotNil(t, c.Type)
	assert.Equal(t, models.PropertyTypeHouse, *c.Type)
	require.NotNil(t, c.Status)
	assert.Equal(t, models.ListingStatusForRent, *c.Status)
	require.NotNil(t, c.MinPrice)
	assert.Zero(t, *c.MinPrice)
	assert.Nil(t, c.District)
	assert.Nil(t, c.MaxPrice)
}

func TestListCriteriaRejectsUnknownType(t *testing.T) {
	cmd := &cobra.Command{Use: "list"}
	var f listFlags
	f.bind(cmd)
	require.NoError(t, cmd.ParseFlags([]string{"--type", "castle"}))
	_, err := f.criteria(cmd)
	assert.Error(t, err)
}

func TestParseID(t *testing.T) {
	id, err := parseID("42")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	for _, bad := range []string{"0", "-3", "abc", ""} {
		_, err := parseID(bad)
		assert.Error(t, err, bad)
	}
}

func TestPrintTable(t *testing.T) {
	var buf bytes.Buffer
	printTable(&buf, nil)
	assert.Equal(t, "No properties found.\n", buf.String())

	buf.Reset()
	printTable(&buf, []models.Property{{
		ID: 7, Title: "Loft", City: "Springfield", Price: 1200,
		Type: models.PropertyTypeApartment, Status: models.ListingStatusForRent,
		Images: []models.PropertyImage{{URL: "u"}},
	}})
	out := buf.String()
	assert.Contains(t, out, "Loft")
	assert.Contains(t, out, "Springfield")
	assert.Contains(t, out, "1200.00")
}

func TestListCriteriaRejectsNonFinitePrices(t *testing.T) {
	for _, args := range [][]string{
		{"--min-price", "NaN"},
		{"--max-price", "Inf"},
		{"--max-price", "-Inf"},
	} {
		cmd := &cobra.Command{Use: "list"}
		var f listFlags
		f.bind(cmd)
		require.NoError(t, cmd.ParseFlags(args))
		_, err := f.criteria(cmd)
		assert.Error(t, err, args)
	}
}
