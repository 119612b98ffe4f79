package validate

import "fitserver/internal/domain"

func (v *Validator) validateMacros(raw string) (*domain.ValidatedOutput, error) {
	// Extraneous top-level keys are ignored; only the four macro fields are
	// taken as primary output.
	var m domain.Macros
	if err := decodeJSON(raw, &m); err != nil {
		return nil, err
	}
	if err := checkMacros(m, "macro targets", true); err != nil {
		return nil, err
	}
	return &domain.ValidatedOutput{Kind: domain.JobKindMacro, Macros: &m}, nil
}
