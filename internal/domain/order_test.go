package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCustomerInfo_Validate(t *testing.T) {
	tests := []struct {
		name string
		info CustomerInfo
		want error
	}{
		{"valid", CustomerInfo{Name: "Ana", Email: "ana@example.com", Phone: "(31) 99999-0000"}, nil},
		{"missing name", CustomerInfo{Email: "ana@example.com", Phone: "123"}, ErrNameRequired},
		{"missing email", CustomerInfo{Name: "Ana", Phone: "123"}, ErrInvalidEmail},
		{"bad email", CustomerInfo{Name: "Ana", Email: "ana.example.com", Phone: "123"}, ErrInvalidEmail},
		{"display name email", CustomerInfo{Name: "Ana", Email: "Ana <ana@example.com>", Phone: "123"}, ErrInvalidEmail},
		{"missing phone", CustomerInfo{Name: "Ana", Email: "ana@example.com"}, ErrPhoneRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.info.Validate()
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestCustomerInfo_Normalize(t *testing.T) {
	info := CustomerInfo{Name: "  Ana ", Email: " ana@example.com", Phone: "123  "}.Normalize()
	assert.Equal(t, CustomerInfo{Name: "Ana", Email: "ana@example.com", Phone: "123"}, info)
	assert.NoError(t, info.Validate())
}

func TestMoney_JSONAcceptsNumberAndString(t *testing.T) {
	var m struct {
		A Money `json:"a"`
		B Money `json:"b"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":69.9,"b":"159.90"}`), &m))
	assert.Equal(t, "69.90", m.A.String())
	assert.Equal(t, "159.90", m.B.String())

	_, err := NewMoney("abc")
	assert.Error(t, err)
}

func TestMoney_StringKeepsSubCents(t *testing.T) {
	assert.Equal(t, "299.70", MustMoney("299.7").String())
	assert.Equal(t, "0.125", MustMoney("0.125").String())
	assert.False(t, MustMoney("69.90").HasSubCents())
	assert.True(t, MustMoney("0.125").HasSubCents())

	data, err := json.Marshal(MustMoney("0.125"))
	require.NoError(t, err)
	assert.Equal(t, "0.125", string(data))
}
