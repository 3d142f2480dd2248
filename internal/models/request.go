package models

// UserTripRequest is the traveler profile a trip build starts from. Missing or
// invalid fields are defaulted, never rejected.
type UserTripRequest struct {
	Age       int      `json:"age"`
	BudgetEGP float64  `json:"budget"`
	Days      int      `json:"days"`
	Interests []string `json:"interests"`
	Cities    []string `json:"cities"`
}

// Validated returns a copy with the permissive-input defaults applied:
// age 25, budget 5000 EGP, 3 days, culture/history interests, Cairo.
func (u UserTripRequest) Validated(defaultAge int, defaultBudget float64, defaultDays int) UserTripRequest {
	out := u
	if out.Age <= 0 {
		out.Age = defaultAge
	}
	if out.BudgetEGP <= 0 {
		out.BudgetEGP = defaultBudget
	}
	if out.Days < 1 {
		out.Days = defaultDays
	}
	if len(out.Interests) == 0 {
		out.Interests = []string{"culture", "history"}
	}
	if len(out.Cities) == 0 {
		out.Cities = []string{"Cairo"}
	}
	return out
}
