package utils

import (
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type residentForm struct {
	IDCard string `json:"id_card" validate:"omitempty,thai_id"`
	Phone  string `json:"phone" validate:"required,thai_phone"`
	Note   string `json:"note" validate:"no_xss"`
}

func TestCustomValidations(t *testing.T) {
	v := NewValidator()

	require.NoError(t, v.Struct(residentForm{IDCard: "1-1037-02071-81-1", Phone: "081-234-5678", Note: "gate 2"}))
	require.NoError(t, v.Struct(residentForm{Phone: "021234567"}))

	err := v.Struct(residentForm{IDCard: "1103702071812", Phone: "12", Note: "<script>x</script>"})
	require.Error(t, err)

	var verrs validator.ValidationErrors
	require.True(t, errors.As(err, &verrs))

	tags := map[string]string{}
	for _, fe := range verrs {
		tags[fe.Field()] = fe.Tag()
	}
	assert.Equal(t, "thai_id", tags["id_card"])
	assert.Equal(t, "thai_phone", tags["phone"])
	assert.Equal(t, "no_xss", tags["note"])
}
