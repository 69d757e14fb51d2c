package services

import "strconv"

// TotalSteps is the number of wizard steps; the flow is linear with no
// branching or skip logic.
const TotalSteps = 6

// StepSpec describes one wizard step: the fields it edits and where Next
// and Previous lead. Next/Prev of 0 mean the transition is not available.
type StepSpec struct {
	Name   string
	Fields []string
	Next   int
	Prev   int
}

// stepTable is the explicit transition table for the wizard. Advancement is
// deliberately permissive: moving forward requires no per-step field
// validation, matching the product's current behavior.
var stepTable = map[int]StepSpec{
	1: {Name: "personal", Fields: []string{"name", "age", "gender", "email", "phone"}, Next: 2},
	2: {Name: "physical", Fields: []string{"height", "weight", "waist"}, Next: 3, Prev: 1},
	3: {Name: "lifestyle", Fields: []string{"activity_level", "exercise_frequency", "exercise_duration", "diet_type", "water_intake", "sleep_hours"}, Next: 4, Prev: 2},
	4: {Name: "goals", Fields: []string{"primary_goal", "secondary_goal", "preferred_time", "location", "equipment_access", "health_conditions"}, Next: 5, Prev: 3},
	5: {Name: "health_history", Fields: []string{"injuries", "medical_conditions", "medications", "allergies"}, Next: 6, Prev: 4},
	6: {Name: "commitment", Fields: []string{"motivation_level", "weekly_availability", "budget", "experience_level"}, Prev: 5},
}

// Step returns the spec for a step, or false for an out-of-range step.
func Step(n int) (StepSpec, bool) {
	s, ok := stepTable[n]
	return s, ok
}

// Wizard drives the six-step assessment form. It holds the draft and the
// current step pointer; it performs no I/O. Not safe for concurrent use;
// callers serialize access per session.
type Wizard struct {
	draft Draft
	step  int

	// OnStepChange, when set, fires after every successful Next/Previous
	// transition (the UI uses it to reset the viewport).
	OnStepChange func(step int)
}

// NewWizard returns a wizard positioned at step 1 with an empty draft.
func NewWizard() *Wizard {
	return &Wizard{step: 1}
}

func (w *Wizard) Step() int { return w.step }

// Progress is the completion percentage for the current step.
func (w *Wizard) Progress() float64 {
	return float64(w.step) / float64(TotalSteps) * 100
}

// Next advances one step. It reports whether the position changed; at the
// final step it is a no-op.
func (w *Wizard) Next() bool {
	spec := stepTable[w.step]
	if spec.Next == 0 {
		return false
	}
	w.step = spec.Next
	if w.OnStepChange != nil {
		w.OnStepChange(w.step)
	}
	return true
}

// Previous moves one step back; at step 1 it is a no-op.
func (w *Wizard) Previous() bool {
	spec := stepTable[w.step]
	if spec.Prev == 0 {
		return false
	}
	w.step = spec.Prev
	if w.OnStepChange != nil {
		w.OnStepChange(w.step)
	}
	return true
}

// Draft returns a copy of the current draft.
func (w *Wizard) Draft() Draft { return w.draft }

// SetField replaces a single draft field by its wire name. Values are
// stored as entered; no coercion or validation happens here.
func (w *Wizard) SetField(name, value string) error {
	d := &w.draft
	switch name {
	case "name":
		d.Personal.Name = value
	case "age":
		d.Personal.Age = value
	case "gender":
		d.Personal.Gender = value
	case "email":
		d.Personal.Email = value
	case "phone":
		d.Personal.Phone = value
	case "height":
		d.Physical.Height = value
	case "weight":
		d.Physical.Weight = value
	case "waist":
		d.Physical.Waist = value
	case "activity_level":
		d.Lifestyle.ActivityLevel = value
	case "exercise_frequency":
		d.Lifestyle.ExerciseFrequency = value
	case "exercise_duration":
		d.Lifestyle.ExerciseDuration = value
	case "diet_type":
		d.Lifestyle.DietType = value
	case "water_intake":
		d.Lifestyle.WaterIntake = value
	case "sleep_hours":
		d.Lifestyle.SleepHours = value
	case "primary_goal":
		d.Goals.PrimaryGoal = value
	case "secondary_goal":
		d.Goals.SecondaryGoal = value
	case "preferred_time":
		d.Goals.PreferredTime = value
	case "location":
		d.Goals.Location = value
	case "equipment_access":
		d.Goals.EquipmentAccess = value
	case "injuries":
		d.Health.Injuries = value
	case "medical_conditions":
		d.Health.MedicalConditions = value
	case "medications":
		d.Health.Medications = value
	case "allergies":
		d.Health.Allergies = value
	case "motivation_level":
		d.Commitment.MotivationLevel = value
	case "weekly_availability":
		d.Commitment.WeeklyAvailability = value
	case "budget":
		d.Commitment.Budget = value
	case "experience_level":
		d.Commitment.ExperienceLevel = value
	default:
		return NewInvalidError("unknown field: " + name)
	}
	return nil
}

// ToggleCondition flips membership of value in the health-conditions set.
// Insertion order of the remaining members is preserved, so toggling the
// same value twice restores the original set. "None" gets no special
// treatment; it can coexist with specific conditions.
func (w *Wizard) ToggleCondition(value string) {
	set := w.draft.Goals.HealthConditions
	for i, v := range set {
		if v == value {
			w.draft.Goals.HealthConditions = append(set[:i:i], set[i+1:]...)
			return
		}
	}
	w.draft.Goals.HealthConditions = append(set, value)
}

// BMI computes the body-mass index from the draft's physical stats. It
// reports false when height or weight is missing or not a positive number.
func (w *Wizard) BMI() (float64, bool) {
	h, err := strconv.ParseFloat(trimmed(w.draft.Physical.Height), 64)
	if err != nil {
		return 0, false
	}
	kg, err := strconv.ParseFloat(trimmed(w.draft.Physical.Weight), 64)
	if err != nil {
		return 0, false
	}
	return BMI(h, kg)
}
