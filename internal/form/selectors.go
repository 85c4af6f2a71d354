package form

import (
	"fmt"

	"formprobe/pkg/model"
)

// Control locators of the student registration form. The probe never
// reads these from configuration: the field set is part of the form's
// contract and a selector drift is a structural failure worth failing
// loudly on.
const (
	selFirstName = "input#firstName"
	selLastName  = "input#lastName"
	selEmail     = "#userEmail"
	selMobile    = "input#userNumber"
	selDOBInput  = "#dateOfBirthInput"
	selPicture   = "input#uploadPicture"
	selSubjects  = "input#subjectsInput"
	selAddress   = "textarea#currentAddress"
	selState     = "#state input[type='text']"
	selCity      = "#city input[type='text']"
	selSubmit    = "#submit"

	selConsent = "button.fc-cta-consent.fc-primary-button"

	selGenderLabels = "#genterWrapper label.custom-control-label"
	selHobbyLabels  = "#hobbiesWrapper .custom-control-label"

	selYearSelect  = "select.react-datepicker__year-select"
	selMonthSelect = "select.react-datepicker__month-select"

	selModalClose = "#closeLargeModal"
	selModalTable = ".modal-body table"
)

// Wrapper element ids of the type-ahead controls; the reactive option
// panel renders inside the wrapper, so option lookups are scoped by it.
const (
	wrapSubjects = "subjectsContainer"
	wrapState    = "state"
	wrapCity     = "city"
)

// xpModalTitle matches the success modal's heading.
const xpModalTitle = "//div[@class='modal-title h4' and contains(text(), 'Thanks for submitting the form')]"

// fieldSelector maps a text-entry field to its input locator.
var fieldSelector = map[model.FieldName]string{
	model.FirstName: selFirstName,
	model.LastName:  selLastName,
	model.Email:     selEmail,
	model.Mobile:    selMobile,
	model.Picture:   selPicture,
	model.Address:   selAddress,
}

// xpOptions matches the visible options of the type-ahead panel inside
// the given wrapper.
func xpOptions(wrapperID string) string {
	return fmt.Sprintf(
		"//div[@id='%s']//div[contains(@class, 'menu')]/div/div[contains(@id, 'option')]",
		wrapperID)
}

// xpOption narrows xpOptions to the option holding the given text.
func xpOption(wrapperID, option string) string {
	return fmt.Sprintf("%s[contains(., '%s')]", xpOptions(wrapperID), option)
}

// xpLabelByText matches a choice label by its rendered text, covering
// both the radio and checkbox groups.
func xpLabelByText(wrapperID, text string) string {
	return fmt.Sprintf(
		"//div[@id='%s']//label[contains(@class, 'custom-control-label') and text()='%s']",
		wrapperID, text)
}

func xpGender(gender string) string { return xpLabelByText("genterWrapper", gender) }
func xpHobby(hobby string) string   { return xpLabelByText("hobbiesWrapper", hobby) }

// xpDayCell matches a calendar day cell of the currently shown month.
func xpDayCell(day int) string {
	return fmt.Sprintf(
		"//div[contains(@class,'react-datepicker__day') and not(contains(@class,'react-datepicker__day--outside-month')) and text()='%d']",
		day)
}
