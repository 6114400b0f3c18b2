package service

import (
	"strings"

	"github.com/hiraya-scholars/hiraya-api/internal/models"
)

// Category point budgets for the progress percentage. They sum to 112; the
// final value is normalized back to 0..100.
const (
	personalWeight = 26
	addressWeight  = 21
	academicWeight = 25
	collegeWeight  = 15
	essayWeight    = 15
	documentWeight = 10
)

// isEmpty treats whitespace-only values and the literal placeholder "N/A"
// as unfilled. The frontend historically sent "N/A" for skipped fields.
func isEmpty(s string) bool {
	trimmed := strings.TrimSpace(s)
	return trimmed == "" || trimmed == "N/A"
}

// IsComplete reports whether every required form field is filled: core
// personal info, the full present address, JHS and SHS academic records,
// the first college and program choice, and a non-empty essay.
func IsComplete(app *models.Application) bool {
	if app == nil {
		return false
	}
	if isEmpty(app.FirstName) || isEmpty(app.LastName) ||
		isEmpty(app.Sex) || app.Birthdate == nil ||
		isEmpty(app.MobileNumber) || isEmpty(app.Email) {
		return false
	}
	if isEmpty(app.PresentRegion) || isEmpty(app.PresentProvince) ||
		isEmpty(app.PresentMunicipality) || isEmpty(app.PresentBarangay) ||
		isEmpty(app.PresentHouseNumber) || isEmpty(app.PresentStreet) ||
		isEmpty(app.PresentZipCode) {
		return false
	}
	if isEmpty(app.JhsName) || isEmpty(app.JhsSchoolID) || isEmpty(app.JhsType) ||
		isEmpty(app.ShsName) || isEmpty(app.ShsSchoolID) || isEmpty(app.ShsType) ||
		isEmpty(app.Track) || isEmpty(app.Strand) || app.Grade12GWA == nil {
		return false
	}
	if isEmpty(app.CollegeFirst) || isEmpty(app.ProgramFirst) {
		return false
	}
	return !isEmpty(app.Essay)
}

// ProgressPercentage derives a 0..100 completion value from field weights
// plus a document contribution scaled by verified count. Adding a filled
// field or a verified document never lowers the result.
func ProgressPercentage(app *models.Application, report *models.CompletenessReport) int {
	if app == nil {
		return 0
	}

	total := personalWeight + addressWeight + academicWeight + collegeWeight + essayWeight
	completed := personalPoints(app) + addressPoints(app) + academicPoints(app) + collegePoints(app) + essayPoints(app.Essay)

	if report != nil && report.TotalRequired > 0 {
		completed += report.VerifiedCount * documentWeight / report.TotalRequired
		total += documentWeight
	}

	if total == 0 {
		return 0
	}
	return completed * 100 / total
}

func personalPoints(app *models.Application) int {
	pts := 0
	if !isEmpty(app.FirstName) {
		pts += 3
	}
	if !isEmpty(app.LastName) {
		pts += 3
	}
	if !isEmpty(app.Sex) {
		pts += 3
	}
	if app.Birthdate != nil {
		pts += 3
	}
	if !isEmpty(app.MobileNumber) {
		pts += 3
	}
	if !isEmpty(app.Email) {
		pts += 3
	}
	if !isEmpty(app.PlaceOfBirth) {
		pts += 2
	}
	if app.Height != nil {
		pts += 2
	}
	if app.Weight != nil {
		pts += 2
	}
	if !isEmpty(app.FacebookURL) {
		pts += 2
	}
	return pts
}

func addressPoints(app *models.Application) int {
	pts := 0
	for _, field := range []string{
		app.PresentRegion, app.PresentProvince, app.PresentMunicipality,
		app.PresentBarangay, app.PresentHouseNumber, app.PresentStreet, app.PresentZipCode,
	} {
		if !isEmpty(field) {
			pts += 2
		}
	}
	for _, field := range []string{
		app.PermanentRegion, app.PermanentProvince, app.PermanentMunicipality,
		app.PermanentBarangay, app.PermanentHouseNumber, app.PermanentStreet, app.PermanentZipCode,
	} {
		if !isEmpty(field) {
			pts++
		}
	}
	return pts
}

func academicPoints(app *models.Application) int {
	pts := 0
	if !isEmpty(app.JhsName) {
		pts += 3
	}
	if !isEmpty(app.JhsSchoolID) {
		pts += 2
	}
	if !isEmpty(app.JhsType) {
		pts += 2
	}
	if !isEmpty(app.ShsName) {
		pts += 3
	}
	if !isEmpty(app.ShsSchoolID) {
		pts += 2
	}
	if !isEmpty(app.ShsType) {
		pts += 2
	}
	if !isEmpty(app.Track) {
		pts += 3
	}
	if !isEmpty(app.Strand) {
		pts += 3
	}
	if app.Grade12GWA != nil {
		pts += 3
	}
	if !isEmpty(app.HonorsReceived) {
		pts += 2
	}
	return pts
}

func collegePoints(app *models.Application) int {
	pts := 0
	if !isEmpty(app.CollegeFirst) {
		pts += 4
	}
	if !isEmpty(app.ProgramFirst) {
		pts += 4
	}
	if !isEmpty(app.CollegeSecond) {
		pts += 2
	}
	if !isEmpty(app.ProgramSecond) {
		pts += 2
	}
	if !isEmpty(app.CollegeThird) {
		pts += 2
	}
	if !isEmpty(app.ProgramThird) {
		pts++
	}
	return pts
}

// essayPoints scores the essay by word count: full credit at 150 words,
// partial at 100, minimal at 50.
func essayPoints(essay string) int {
	if isEmpty(essay) {
		return 0
	}
	wordCount := len(strings.Fields(essay))
	switch {
	case wordCount >= 150:
		return 15
	case wordCount >= 100:
		return 10
	case wordCount >= 50:
		return 5
	}
	return 0
}
