package service

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/hiraya-scholars/hiraya-api/internal/models"
)

func fullApplication() *models.Application {
	birthdate := time.Date(2007, 3, 14, 0, 0, 0, 0, time.UTC)
	height, weight, gwa := 170.0, 60.0, 92.5
	return &models.Application{
		FirstName:    "Juan",
		MiddleName:   "Reyes",
		LastName:     "Dela Cruz",
		Sex:          "Male",
		Birthdate:    &birthdate,
		PlaceOfBirth: "Quezon City",
		Height:       &height,
		Weight:       &weight,
		MobileNumber: "09171234567",
		Email:        "juan@example.com",
		FacebookURL:  "https://facebook.com/juandc",

		PresentRegion:       "NCR",
		PresentProvince:     "Metro Manila",
		PresentMunicipality: "Quezon City",
		PresentBarangay:     "Commonwealth",
		PresentHouseNumber:  "12",
		PresentStreet:       "Main St",
		PresentZipCode:      "1121",

		PermanentRegion:       "NCR",
		PermanentProvince:     "Metro Manila",
		PermanentMunicipality: "Quezon City",
		PermanentBarangay:     "Commonwealth",
		PermanentHouseNumber:  "12",
		PermanentStreet:       "Main St",
		PermanentZipCode:      "1121",

		JhsName:        "QC Junior High",
		JhsSchoolID:    "300123",
		JhsType:        "Public",
		ShsName:        "QC Senior High",
		ShsSchoolID:    "300456",
		ShsType:        "Public",
		Track:          "Academic",
		Strand:         "STEM",
		Grade12GWA:     &gwa,
		HonorsReceived: "With Honors",

		CollegeFirst:  "State University",
		CollegeSecond: "City College",
		CollegeThird:  "Provincial College",
		ProgramFirst:  "BS Computer Science",
		ProgramSecond: "BS Information Technology",
		ProgramThird:  "BS Mathematics",

		Essay: strings.Repeat("word ", 150),
	}
}

func fullReport() *models.CompletenessReport {
	return &models.CompletenessReport{
		VerifiedCount: len(models.RequiredDocumentTypes),
		TotalRequired: len(models.RequiredDocumentTypes),
	}
}

func TestIsCompleteFullApplication(t *testing.T) {
	assert.True(t, IsComplete(fullApplication()))
}

func TestIsCompleteTreatsPlaceholderAsEmpty(t *testing.T) {
	app := fullApplication()
	app.PresentStreet = "N/A"
	assert.False(t, IsComplete(app))

	app = fullApplication()
	app.Track = "   "
	assert.False(t, IsComplete(app))
}

func TestIsCompleteIgnoresOptionalFields(t *testing.T) {
	app := fullApplication()
	app.HonorsReceived = ""
	app.CollegeSecond = ""
	app.ProgramThird = ""
	app.FacebookURL = ""
	assert.True(t, IsComplete(app))
}

func TestIsCompleteNil(t *testing.T) {
	assert.False(t, IsComplete(nil))
}

func TestProgressPercentageFullyComplete(t *testing.T) {
	assert.Equal(t, 100, ProgressPercentage(fullApplication(), fullReport()))
}

func TestProgressPercentageEmptyApplication(t *testing.T) {
	report := &models.CompletenessReport{TotalRequired: len(models.RequiredDocumentTypes)}
	assert.Equal(t, 0, ProgressPercentage(&models.Application{}, report))
	assert.Equal(t, 0, ProgressPercentage(nil, report))
}

func TestProgressPercentageEssayTiers(t *testing.T) {
	base := fullApplication()
	report := fullReport()
	full := ProgressPercentage(base, report)

	cases := []struct {
		words  int
		points int
	}{
		{150, 15},
		{149, 10},
		{100, 10},
		{99, 5},
		{50, 5},
		{49, 0},
	}
	for _, tc := range cases {
		app := fullApplication()
		app.Essay = strings.Repeat("word ", tc.words)
		got := ProgressPercentage(app, report)
		expected := (112 - 15 + tc.points) * 100 / 112
		assert.Equalf(t, expected, got, "%d words", tc.words)
		assert.LessOrEqual(t, got, full)
	}
}

func TestProgressPercentageScalesDocuments(t *testing.T) {
	app := fullApplication()
	report := &models.CompletenessReport{VerifiedCount: 5, TotalRequired: 10}
	// 102 field points plus 5 of 10 documents.
	assert.Equal(t, (102+5)*100/112, ProgressPercentage(app, report))
}

func TestProgressPercentageWithoutReport(t *testing.T) {
	// No document report: field points only, out of 102.
	assert.Equal(t, 100, ProgressPercentage(fullApplication(), nil))
}

func TestProgressPercentageMonotonic(t *testing.T) {
	app := &models.Application{FirstName: "Juan"}
	report := &models.CompletenessReport{TotalRequired: 10}
	low := ProgressPercentage(app, report)

	app.LastName = "Dela Cruz"
	higher := ProgressPercentage(app, report)
	assert.GreaterOrEqual(t, higher, low)

	report.VerifiedCount = 3
	assert.GreaterOrEqual(t, ProgressPercentage(app, report), higher)
}
