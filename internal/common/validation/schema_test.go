package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validSubmission() map[string]interface{} {
	return map[string]interface{}{
		"applicationId": "app-1",
		"userId":        "user-1",
		"car":           map[string]interface{}{"make": "BMW", "model": "320i M Sport", "year": 2022, "price": 599000},
		"dealership":    map[string]interface{}{"name": "Premium Motors JHB"},
		"application": map[string]interface{}{
			"firstName": "Thandi", "lastName": "Nkosi", "idNumber": "9001015009087",
			"email": "thandi@example.co.za", "phone": "0821234567", "address": "12 Main Road, Sandton",
			"employmentStatus": "employed", "monthlyIncome": "45000",
			"bankName": "FNB", "accountType": "current", "monthlyExpenses": "15000",
			"preferredLoanTerm": "60", "depositAmount": "50000", "intendedUse": "personal",
		},
		"consent": map[string]interface{}{
			"dataProcessing": true, "thirdPartySharing": true, "dataRetention": true,
			"marketingCommunication": false, "timestamp": "2024-03-01T10:00:00Z",
		},
	}
}

func TestValidateFinanceSubmission_Valid(t *testing.T) {
	res, err := ValidateFinanceSubmission(validSubmission())
	require.NoError(t, err)
	assert.True(t, res.Valid, res.GetErrorMessages())
}

func TestValidateFinanceSubmission_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(map[string]interface{})
		field  string
	}{
		{"missing user", func(d map[string]interface{}) { delete(d, "userId") }, "userId"},
		{"consent not granted", func(d map[string]interface{}) {
			d["consent"].(map[string]interface{})["dataRetention"] = false
		}, "consent.dataRetention"},
		{"bad loan term", func(d map[string]interface{}) {
			d["application"].(map[string]interface{})["preferredLoanTerm"] = "84"
		}, "application.preferredLoanTerm"},
		{"missing applicant field", func(d map[string]interface{}) {
			delete(d["application"].(map[string]interface{}), "idNumber")
		}, "application.idNumber"},
		{"zero price", func(d map[string]interface{}) {
			d["car"].(map[string]interface{})["price"] = 0
		}, "car.price"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := validSubmission()
			tt.mutate(doc)
			res, err := ValidateFinanceSubmission(doc)
			require.NoError(t, err)
			assert.False(t, res.Valid)
			assert.True(t, res.HasErrors(tt.field), res.GetErrorMessages())
		})
	}
}

func TestCompile_InvalidSchema(t *testing.T) {
	_, err := Compile(`{"type": 12}`)
	assert.Error(t, err)
}
