package model

// FieldType is a semantic role a scope-sheet column can be assigned to.
// The set is closed: adding a new role means adding a constant here plus a
// classifier entry in internal/classify and a knowledge bucket (which is
// derived from the constant, so that part is free).
type FieldType string

const (
	FieldNPI                 FieldType = "npi"
	FieldFirstName           FieldType = "firstName"
	FieldLastName            FieldType = "lastName"
	FieldGender              FieldType = "gender"
	FieldProfessionalSuffix  FieldType = "professionalSuffix"
	FieldHeadshot            FieldType = "headshot"
	FieldAdditionalLanguages FieldType = "additionalLanguages"
	FieldPatientsAccepted    FieldType = "patientsAccepted"
	FieldSpecialty           FieldType = "specialty"
	FieldLocationID          FieldType = "locationId"
	FieldLocationName        FieldType = "locationName"
	FieldLocationTypeRaw     FieldType = "locationTypeRaw"
	FieldPracticeID          FieldType = "practiceId"
	FieldPracticeCloudID     FieldType = "practiceCloudId"
	FieldPracticeName        FieldType = "practiceName"
	FieldAddressLine1        FieldType = "addressLine1"
	FieldAddressLine2        FieldType = "addressLine2"
	FieldCity                FieldType = "city"
	FieldState               FieldType = "state"
	FieldZip                 FieldType = "zip"
	FieldPFS                 FieldType = "pfs"
)

// fieldLabels maps field types to the human-readable names used in the
// output template headers.
var fieldLabels = map[FieldType]string{
	FieldNPI:                 "NPI Number",
	FieldFirstName:           "First Name",
	FieldLastName:            "Last Name",
	FieldGender:              "Gender",
	FieldProfessionalSuffix:  "Professional Suffix 1-3",
	FieldHeadshot:            "Headshot Link",
	FieldAdditionalLanguages: "Additional Languages Spoken 1-3",
	FieldPatientsAccepted:    "Patients Accepted",
	FieldSpecialty:           "Specialty",
	FieldLocationID:          "Location ID",
	FieldLocationName:        "Location Name",
	FieldLocationTypeRaw:     "Location Type_Raw",
	FieldPracticeID:          "Practice ID",
	FieldPracticeCloudID:     "Practice Cloud ID",
	FieldPracticeName:        "Practice Name",
	FieldAddressLine1:        "Address Line 1",
	FieldAddressLine2:        "Address Line 2",
	FieldCity:                "City",
	FieldState:               "State",
	FieldZip:                 "ZIP",
	FieldPFS:                 "PFS",
}

// fieldOrder fixes the display/iteration order for all field types.
var fieldOrder = []FieldType{
	FieldNPI, FieldFirstName, FieldLastName, FieldGender,
	FieldProfessionalSuffix, FieldHeadshot, FieldAdditionalLanguages,
	FieldPatientsAccepted, FieldSpecialty, FieldLocationID,
	FieldLocationName, FieldLocationTypeRaw, FieldPracticeID,
	FieldPracticeCloudID, FieldPracticeName, FieldAddressLine1,
	FieldAddressLine2, FieldCity, FieldState, FieldZip, FieldPFS,
}

// AllFieldTypes returns every known field type in display order.
// The returned slice is a copy.
func AllFieldTypes() []FieldType {
	out := make([]FieldType, len(fieldOrder))
	copy(out, fieldOrder)
	return out
}

// Valid reports whether ft is a member of the closed field-type set.
func (ft FieldType) Valid() bool {
	_, ok := fieldLabels[ft]
	return ok
}

// Label returns the human-readable template header for the field type.
// Unknown field types fall back to the raw value.
func (ft FieldType) Label() string {
	if l, ok := fieldLabels[ft]; ok {
		return l
	}
	return string(ft)
}

// Bucket returns the knowledge-base bucket name for the field type,
// e.g. "firstNameColumns".
func (ft FieldType) Bucket() string {
	return string(ft) + "Columns"
}
