package validator

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type createWishlistInput struct {
	Name          string `validate:"required,min=1,max=100"`
	CoverImageURL string `validate:"omitempty,url"`
	SavedCount    int    `validate:"gte=0,lte=10000"`
}

func TestValidate_Success(t *testing.T) {
	in := createWishlistInput{Name: "Mexico City", CoverImageURL: "https://img.example.com/cdmx.jpg"}
	assert.NoError(t, Validate(in))
}

func TestValidate_MissingRequired(t *testing.T) {
	in := createWishlistInput{CoverImageURL: "https://img.example.com/cdmx.jpg"}
	err := Validate(in)
	require.Error(t, err)

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	fields := valErr.Fields()
	assert.Contains(t, fields, "Name")
	assert.Equal(t, "is required", fields["Name"])
}

func TestValidate_InvalidURL(t *testing.T) {
	in := createWishlistInput{Name: "Mexico City", CoverImageURL: "not a url"}
	err := Validate(in)
	require.Error(t, err)

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	fields := valErr.Fields()
	assert.Equal(t, "must be a valid URL", fields["CoverImageURL"])
}

func TestValidate_OutOfRange(t *testing.T) {
	in := createWishlistInput{Name: "Mexico City", SavedCount: 999999}
	err := Validate(in)
	require.Error(t, err)

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	fields := valErr.Fields()
	assert.Contains(t, fields, "SavedCount")
	assert.Contains(t, fields["SavedCount"], "10000")
}

func TestValidate_MultipleErrors(t *testing.T) {
	in := createWishlistInput{CoverImageURL: "bogus", SavedCount: -1}
	err := Validate(in)
	require.Error(t, err)

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	fields := valErr.Fields()
	assert.Contains(t, fields, "Name")
	assert.Contains(t, fields, "CoverImageURL")
	assert.Contains(t, fields, "SavedCount")
}

func TestValidationError_ErrorString(t *testing.T) {
	err := Validate(createWishlistInput{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "field 'Name'")
	assert.Contains(t, err.Error(), "is required")
}

type nameLengthInput struct {
	Slug string `validate:"min=3,max=64"`
}

func TestValidate_MinMax(t *testing.T) {
	err := Validate(nameLengthInput{Slug: "ab"})
	require.Error(t, err)

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Contains(t, valErr.Fields()["Slug"], "at least 3")

	err = Validate(nameLengthInput{Slug: strings.Repeat("x", 65)})
	require.Error(t, err)
	require.ErrorAs(t, err, &valErr)
	assert.Contains(t, valErr.Fields()["Slug"], "at most 64")
}

type idInput struct {
	RecommendationID string `validate:"uuid"`
}

func TestValidate_UUID(t *testing.T) {
	err := Validate(idInput{RecommendationID: "rec-1"})
	require.Error(t, err)

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Equal(t, "must be a valid UUID", valErr.Fields()["RecommendationID"])
}

func TestValidate_UUID_Valid(t *testing.T) {
	err := Validate(idInput{RecommendationID: "550e8400-e29b-41d4-a716-446655440000"})
	assert.NoError(t, err)
}

type categoryInput struct {
	Category string `validate:"oneof=restaurant bar cafe activity"`
}

func TestValidate_OneOf(t *testing.T) {
	err := Validate(categoryInput{Category: "spaceport"})
	require.Error(t, err)

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Contains(t, valErr.Fields()["Category"], "one of")
}

func TestDecodeAndValidate_Success(t *testing.T) {
	body := `{"Name":"Tokyo Eats","CoverImageURL":"https://img.example.com/tokyo.jpg"}`
	req := httptest.NewRequest(http.MethodPost, "/wishlists", bytes.NewBufferString(body))

	var in createWishlistInput
	err := DecodeAndValidate(req, &in)

	require.NoError(t, err)
	assert.Equal(t, "Tokyo Eats", in.Name)
	assert.Equal(t, "https://img.example.com/tokyo.jpg", in.CoverImageURL)
}

func TestDecodeAndValidate_InvalidJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/wishlists", strings.NewReader("{invalid"))

	var in createWishlistInput
	err := DecodeAndValidate(req, &in)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode request body")
}

func TestDecodeAndValidate_ValidationFails(t *testing.T) {
	body := `{"Name":"","CoverImageURL":"bogus"}`
	req := httptest.NewRequest(http.MethodPost, "/wishlists", bytes.NewBufferString(body))

	var in createWishlistInput
	err := DecodeAndValidate(req, &in)

	require.Error(t, err)
	var valErr *ValidationError
	assert.ErrorAs(t, err, &valErr)
}
