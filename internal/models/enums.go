package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// PropertyType is the integer-coded kind of a listing.
type PropertyType int

const (
	PropertyTypeApartment  PropertyType = 1
	PropertyTypeHouse      PropertyType = 2
	PropertyTypeStudio     PropertyType = 3
	PropertyTypeVilla      PropertyType = 4
	PropertyTypeCommercial PropertyType = 5
)

var propertyTypeNames = map[PropertyType]string{
	PropertyTypeApartment:  "Apartment",
	PropertyTypeHouse:      "House",
	PropertyTypeStudio:     "Studio",
	PropertyTypeVilla:      "Villa",
	PropertyTypeCommercial: "Commercial",
}

// ListingStatus is the integer-coded market status of a listing.
type ListingStatus int

const (
	ListingStatusForSale ListingStatus = 1
	ListingStatusForRent ListingStatus = 2
	ListingStatusSold    ListingStatus = 3
	ListingStatusRented  ListingStatus = 4
)

var listingStatusNames = map[ListingStatus]string{
	ListingStatusForSale: "ForSale",
	ListingStatusForRent: "ForRent",
	ListingStatusSold:    "Sold",
	ListingStatusRented:  "Rented",
}

// PropertyTypes returns every declared property type in code order.
func PropertyTypes() []PropertyType {
	return []PropertyType{
		PropertyTypeApartment, PropertyTypeHouse, PropertyTypeStudio,
		PropertyTypeVilla, PropertyTypeCommercial,
	}
}

// ListingStatuses returns every declared listing status in code order.
func ListingStatuses() []ListingStatus {
	return []ListingStatus{
		ListingStatusForSale, ListingStatusForRent, ListingStatusSold, ListingStatusRented,
	}
}

func (t PropertyType) IsValid() bool {
	_, ok := propertyTypeNames[t]
	return ok
}

func (t PropertyType) String() string {
	if name, ok := propertyTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("PropertyType(%d)", int(t))
}

func (t PropertyType) MarshalText() ([]byte, error) {
	if !t.IsValid() {
		return nil, fmt.Errorf("invalid property type %d", int(t))
	}
	return []byte(t.String()), nil
}

// UnmarshalJSON accepts either the name ("Apartment") or the integer code (1).
func (t *PropertyType) UnmarshalJSON(data []byte) error {
	raw, err := enumToken(data)
	if err != nil {
		return err
	}
	parsed, err := ParsePropertyType(raw)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// ParsePropertyType parses a case-insensitive name or an integer code.
func ParsePropertyType(s string) (PropertyType, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		if t := PropertyType(n); t.IsValid() {
			return t, nil
		}
		return 0, fmt.Errorf("unknown property type %q", s)
	}
	for t, name := range propertyTypeNames {
		if strings.EqualFold(name, s) {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown property type %q", s)
}

func (s ListingStatus) IsValid() bool {
	_, ok := listingStatusNames[s]
	return ok
}

func (s ListingStatus) String() string {
	if name, ok := listingStatusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("ListingStatus(%d)", int(s))
}

func (s ListingStatus) MarshalText() ([]byte, error) {
	if !s.IsValid() {
		return nil, fmt.Errorf("invalid listing status %d", int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalJSON accepts either the name ("ForSale") or the integer code (1).
func (s *ListingStatus) UnmarshalJSON(data []byte) error {
	raw, err := enumToken(data)
	if err != nil {
		return err
	}
	parsed, err := ParseListingStatus(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseListingStatus parses a case-insensitive name or an integer code.
func ParseListingStatus(v string) (ListingStatus, error) {
	v = strings.TrimSpace(v)
	if n, err := strconv.Atoi(v); err == nil {
		if s := ListingStatus(n); s.IsValid() {
			return s, nil
		}
		return 0, fmt.Errorf("unknown listing status %q", v)
	}
	for s, name := range listingStatusNames {
		if strings.EqualFold(name, v) {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown listing status %q", v)
}

// enumToken returns the raw token of a JSON string or number.
func enumToken(data []byte) (string, error) {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return "", err
		}
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return "", fmt.Errorf("enum value must be a string or an integer: %w", err)
	}
	return n.String(), nil
}
