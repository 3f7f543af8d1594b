package enums

import "strings"

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

func ParseGender(input string) (Gender, bool) {
	switch Gender(strings.ToLower(strings.TrimSpace(input))) {
	case GenderMale:
		return GenderMale, true
	case GenderFemale:
		return GenderFemale, true
	default:
		return "", false
	}
}

func (g Gender) Valid() bool {
	return g == GenderMale || g == GenderFemale
}

// Opposite returns the default discovery preference for a viewer.
func (g Gender) Opposite() Gender {
	if g == GenderMale {
		return GenderFemale
	}
	return GenderMale
}
