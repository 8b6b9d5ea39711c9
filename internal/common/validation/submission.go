package validation

// FinanceSubmissionSchema describes the variables the finance application
// process is started with. Field content rules live in the application package;
// this schema checks shape and types.
const FinanceSubmissionSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["applicationId", "userId", "car", "dealership", "application", "consent"],
  "properties": {
    "applicationId": {"type": "string", "minLength": 1},
    "userId": {"type": "string", "minLength": 1},
    "listingId": {"type": "string"},
    "reference": {"type": "string"},
    "car": {
      "type": "object",
      "required": ["make", "model", "year", "price"],
      "properties": {
        "make": {"type": "string", "minLength": 1},
        "model": {"type": "string", "minLength": 1},
        "year": {"type": "integer", "minimum": 1900},
        "price": {"type": "integer", "exclusiveMinimum": 0}
      }
    },
    "dealership": {
      "type": "object",
      "required": ["name"],
      "properties": {
        "name": {"type": "string", "minLength": 1},
        "phone": {"type": "string"}
      }
    },
    "application": {
      "type": "object",
      "required": ["firstName", "lastName", "idNumber", "email", "phone", "address",
        "employmentStatus", "monthlyIncome", "bankName", "accountType", "monthlyExpenses",
        "preferredLoanTerm", "depositAmount", "intendedUse"],
      "properties": {
        "employmentStatus": {"enum": ["employed", "self-employed", "pensioner", "student", "unemployed"]},
        "accountType": {"enum": ["current", "savings"]},
        "preferredLoanTerm": {"enum": ["12", "24", "36", "48", "60", "72"]},
        "intendedUse": {"enum": ["personal", "business", "family"]}
      },
      "additionalProperties": {"type": "string"}
    },
    "consent": {
      "type": "object",
      "required": ["dataProcessing", "thirdPartySharing", "dataRetention"],
      "properties": {
        "dataProcessing": {"const": true},
        "thirdPartySharing": {"const": true},
        "dataRetention": {"const": true},
        "marketingCommunication": {"type": "boolean"},
        "timestamp": {"type": "string", "format": "date-time"}
      }
    }
  }
}`

var financeSubmission = MustCompile(FinanceSubmissionSchema)

// ValidateFinanceSubmission checks a submission document against FinanceSubmissionSchema.
func ValidateFinanceSubmission(doc interface{}) (*ValidationResult, error) {
	return financeSubmission.Validate(doc)
}
