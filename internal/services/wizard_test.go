package services

import (
	"math/rand"
	"reflect"
	"testing"
)

func TestWizardStaysWithinBounds(t *testing.T) {
	w := NewWizard()
	if w.Step() != 1 {
		t.Fatalf("new wizard at step %d, want 1", w.Step())
	}
	if w.Previous() {
		t.Fatalf("Previous moved below step 1")
	}
	for i := 0; i < 10; i++ {
		w.Next()
	}
	if w.Step() != TotalSteps {
		t.Fatalf("step = %d after repeated Next, want %d", w.Step(), TotalSteps)
	}
	if w.Next() {
		t.Fatalf("Next moved past the final step")
	}

	// Random walks never leave [1, TotalSteps] and progress always matches.
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 500; i++ {
		if rng.Intn(2) == 0 {
			w.Next()
		} else {
			w.Previous()
		}
		if w.Step() < 1 || w.Step() > TotalSteps {
			t.Fatalf("step %d out of range", w.Step())
		}
		want := float64(w.Step()) / float64(TotalSteps) * 100
		if w.Progress() != want {
			t.Fatalf("progress = %v at step %d, want %v", w.Progress(), w.Step(), want)
		}
	}
}

func TestWizardStepChangeHook(t *testing.T) {
	w := NewWizard()
	var seen []int
	w.OnStepChange = func(step int) { seen = append(seen, step) }
	w.Next()
	w.Next()
	w.Previous()
	w.Previous()
	w.Previous() // no-op at step 1, must not fire
	if !reflect.DeepEqual(seen, []int{2, 3, 2, 1}) {
		t.Fatalf("hook fired for steps %v, want [2 3 2 1]", seen)
	}
}

func TestWizardPermissiveAdvancement(t *testing.T) {
	// No field is required to move forward; an empty draft reaches Submit.
	w := NewWizard()
	for w.Next() {
	}
	if w.Step() != TotalSteps {
		t.Fatalf("empty draft stopped at step %d, want %d", w.Step(), TotalSteps)
	}
}

func TestWizardSetField(t *testing.T) {
	w := NewWizard()
	fields := map[string]string{
		"name": "Ada", "age": "34", "gender": "female", "email": "ada@example.com", "phone": "555-0101",
		"height": "175", "weight": "70", "waist": "74",
		"activity_level": "moderate", "exercise_frequency": "3", "exercise_duration": "45",
		"diet_type": "omnivore", "water_intake": "2", "sleep_hours": "7",
		"primary_goal": "strength", "secondary_goal": "mobility", "preferred_time": "morning",
		"location": "gym", "equipment_access": "full",
		"injuries": "none", "medical_conditions": "none", "medications": "none", "allergies": "none",
		"motivation_level": "8", "weekly_availability": "5", "budget": "200", "experience_level": "beginner",
	}
	for name, value := range fields {
		if err := w.SetField(name, value); err != nil {
			t.Fatalf("SetField(%q) returned error: %v", name, err)
		}
	}
	d := w.Draft()
	if d.Personal.Name != "Ada" || d.Physical.Height != "175" || d.Commitment.Budget != "200" {
		t.Fatalf("draft fields not applied: %+v", d)
	}

	if err := w.SetField("favorite_color", "teal"); err == nil {
		t.Fatalf("expected error for unknown field")
	} else if se, ok := AsServiceError(err); !ok || se.Code != ErrorInvalid {
		t.Fatalf("unknown field error = %v, want invalid service error", err)
	}
}

func TestToggleConditionDoubleToggle(t *testing.T) {
	w := NewWizard()
	w.ToggleCondition("diabetes")
	w.ToggleCondition("hypertension")
	w.ToggleCondition("asthma")

	w.ToggleCondition("hypertension")
	w.ToggleCondition("hypertension")

	got := w.Draft().Goals.HealthConditions
	want := []string{"diabetes", "asthma", "hypertension"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("conditions = %v, want %v", got, want)
	}

	// Removing preserves the order of the others.
	w.ToggleCondition("hypertension")
	got = w.Draft().Goals.HealthConditions
	want = []string{"diabetes", "asthma"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("conditions after removal = %v, want %v", got, want)
	}
}

func TestToggleConditionNoneNotExclusive(t *testing.T) {
	w := NewWizard()
	w.ToggleCondition("None")
	w.ToggleCondition("diabetes")
	got := w.Draft().Goals.HealthConditions
	if !reflect.DeepEqual(got, []string{"None", "diabetes"}) {
		t.Fatalf("conditions = %v, want None to coexist with diabetes", got)
	}
}

func TestStepTableShape(t *testing.T) {
	for n := 1; n <= TotalSteps; n++ {
		spec, ok := Step(n)
		if !ok {
			t.Fatalf("missing spec for step %d", n)
		}
		if n < TotalSteps && spec.Next != n+1 {
			t.Fatalf("step %d next = %d, want %d", n, spec.Next, n+1)
		}
		if n > 1 && spec.Prev != n-1 {
			t.Fatalf("step %d prev = %d, want %d", n, spec.Prev, n-1)
		}
		if len(spec.Fields) == 0 {
			t.Fatalf("step %d has no fields", n)
		}
	}
	if _, ok := Step(0); ok {
		t.Fatalf("step 0 should not exist")
	}
	if _, ok := Step(TotalSteps + 1); ok {
		t.Fatalf("step %d should not exist", TotalSteps+1)
	}
}

func TestWizardBMIFromDraft(t *testing.T) {
	w := NewWizard()
	if _, ok := w.BMI(); ok {
		t.Fatalf("BMI available on empty draft")
	}
	_ = w.SetField("height", "175")
	_ = w.SetField("weight", "70")
	v, ok := w.BMI()
	if !ok || v != 22.9 {
		t.Fatalf("BMI = (%v,%v), want (22.9,true)", v, ok)
	}
	_ = w.SetField("weight", "not a number")
	if _, ok := w.BMI(); ok {
		t.Fatalf("BMI available with unparsable weight")
	}
}
