package checkaffordability

import (
	"car-mzansi-connect/internal/finance/application"
	"car-mzansi-connect/internal/models"
)

type Input struct {
	ApplicationID string                        `json:"applicationId"`
	Car           models.Car                    `json:"car"`
	Application   application.ApplicationRecord `json:"application"`
}

// Output amounts are decimal strings in rands.
type Output struct {
	Affordable        bool   `json:"affordable"`
	MonthlyInstalment string `json:"monthlyInstalment"`
	DisposableIncome  string `json:"disposableIncome"`
	InstalmentRatio   string `json:"instalmentRatio"`
	AnnualRate        string `json:"annualRate"`
}
