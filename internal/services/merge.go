package services

import (
	"strings"
	"time"

	"github.com/SundayYogurt/bursary_service/internal/domain"
	"github.com/SundayYogurt/bursary_service/internal/dto"
	"github.com/SundayYogurt/bursary_service/internal/helper/utils"
)

// A nil payload field leaves the stored value alone. A present value
// overwrites it, and a present empty string clears it. Required text columns
// fall back to domain.NotSpecified instead of becoming empty.

func setText(dst *string, v *string) {
	if v != nil {
		*dst = strings.TrimSpace(*v)
	}
}

func setRequiredText(dst *string, v *string) {
	if v == nil {
		return
	}
	s := strings.TrimSpace(*v)
	if s == "" {
		s = domain.NotSpecified
	}
	*dst = s
}

func setBool(dst *bool, v *dto.YesNo) {
	if v != nil {
		*dst = v.Bool()
	}
}

func setOptionalBool(dst **bool, v *dto.YesNo) {
	if v != nil {
		b := v.Bool()
		*dst = &b
	}
}

func setOptionalInt(dst **int, v *dto.FlexInt, field string) error {
	if v == nil {
		return nil
	}
	if v.Null {
		*dst = nil
		return nil
	}
	if v.Value < 0 {
		return validationError("%s must not be negative", field)
	}
	n := v.Value
	*dst = &n
	return nil
}

func setDate(dst **time.Time, v *dto.Date) {
	if v == nil {
		return
	}
	if v.IsZero() {
		*dst = nil
		return
	}
	t := v.Time
	*dst = &t
}

func parseSex(s string) (domain.Sex, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return "", nil
	case "male", "m":
		return domain.SexMale, nil
	case "female", "f":
		return domain.SexFemale, nil
	}
	return "", validationError("sex must be Male or Female")
}

func mergeApplicant(a *domain.Applicant, in *dto.ApplicationPayload) error {
	setRequiredText(&a.Surname, in.Surname)
	setRequiredText(&a.FirstName, in.FirstName)
	setText(&a.OtherNames, in.OtherNames)
	setDate(&a.DateOfBirth, in.DateOfBirth)
	if in.Sex != nil {
		sex, err := parseSex(*in.Sex)
		if err != nil {
			return err
		}
		a.Sex = sex
	}
	setText(&a.StateOfOrigin, in.StateOfOrigin)
	setText(&a.LGA, in.LGA)
	setText(&a.HomeTown, in.HomeTown)
	setText(&a.Address, in.Address)
	setText(&a.Phone, in.Phone)
	if in.Email != nil {
		email := strings.TrimSpace(*in.Email)
		if email != "" {
			normalized, err := utils.NormalizeEmail(email)
			if err != nil {
				return validationError("%s", err.Error())
			}
			email = normalized
		}
		a.Email = email
	}
	setText(&a.Parish, in.Parish)
	setBool(&a.ConsentGiven, in.ConsentGiven)
	setBool(&a.PriorScholarship, in.PriorScholarship)
	return nil
}

func mergeFamily(f *domain.FamilyInfo, in *dto.FamilyPayload) error {
	setText(&f.FatherName, in.FatherName)
	setText(&f.FatherOccupation, in.FatherOccupation)
	setText(&f.FatherEmployer, in.FatherEmployer)
	setText(&f.FatherPhone, in.FatherPhone)
	setText(&f.FatherAddress, in.FatherAddress)
	setOptionalBool(&f.FatherAlive, in.FatherAlive)

	setText(&f.MotherName, in.MotherName)
	setText(&f.MotherOccupation, in.MotherOccupation)
	setText(&f.MotherEmployer, in.MotherEmployer)
	setText(&f.MotherPhone, in.MotherPhone)
	setText(&f.MotherAddress, in.MotherAddress)
	setOptionalBool(&f.MotherAlive, in.MotherAlive)

	setText(&f.GuardianName, in.GuardianName)
	setText(&f.GuardianRelationship, in.GuardianRelationship)
	setText(&f.GuardianOccupation, in.GuardianOccupation)
	setText(&f.GuardianPhone, in.GuardianPhone)
	setText(&f.GuardianAddress, in.GuardianAddress)

	return setOptionalInt(&f.NumberOfSiblings, in.NumberOfSiblings, "numberOfSiblings")
}

func mergeApplication(app *domain.Application, in *dto.ApplicationPayload) error {
	setRequiredText(&app.SchoolName, in.SchoolName)
	setText(&app.SchoolAddress, in.SchoolAddress)
	setText(&app.ClassLevel, in.ClassLevel)
	setText(&app.Course, in.Course)
	setText(&app.AdmissionNumber, in.AdmissionNumber)

	if in.Age != nil {
		if in.Age.Value < 0 {
			return validationError("age must not be negative")
		}
		app.Age = in.Age.Value // Null leaves Value at 0
	}
	if err := setOptionalInt(&app.ClassSize, in.ClassSize, "classSize"); err != nil {
		return err
	}
	if in.AmountRequested != nil {
		if in.AmountRequested.IsNegative() {
			return validationError("amountRequested must not be negative")
		}
		app.AmountRequested = *in.AmountRequested
	}
	setText(&app.Reason, in.Reason)
	setBool(&app.ChurchMember, in.ChurchMember)
	setBool(&app.ReceivesOtherSupport, in.ReceivesOtherSupport)

	setText(&app.PassportPhotoKey, in.PassportPhotoKey)
	setText(&app.AdmissionLetterKey, in.AdmissionLetterKey)
	setText(&app.ResultSlipKey, in.ResultSlipKey)
	setText(&app.RecommendationLetterKey, in.RecommendationLetterKey)
	setText(&app.FeesInvoiceKey, in.FeesInvoiceKey)
	return nil
}

func isFilled(s string) bool {
	return s != "" && s != domain.NotSpecified
}

// readyForSubmission checks the fields a finalized application cannot lack.
func readyForSubmission(a *domain.Applicant, app *domain.Application) bool {
	return isFilled(a.Surname) && isFilled(a.FirstName) && a.DateOfBirth != nil && isFilled(app.SchoolName)
}
