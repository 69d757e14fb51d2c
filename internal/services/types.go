package services

import "time"

// Assessment statuses. Status is set by back-office review; the submission
// pipeline only ever creates assessments as pending.
const (
	StatusPending   = "pending"
	StatusReviewed  = "reviewed"
	StatusCompleted = "completed"
)

// PersonalInfo is collected on wizard step 1.
type PersonalInfo struct {
	Name   string `json:"name,omitempty"`
	Age    string `json:"age,omitempty"`
	Gender string `json:"gender,omitempty"`
	Email  string `json:"email,omitempty"`
	Phone  string `json:"phone,omitempty"`
}

// PhysicalStats is collected on wizard step 2. Height is centimeters and
// weight kilograms, but values are kept exactly as entered; parsing happens
// only when a derived metric needs them.
type PhysicalStats struct {
	Height string `json:"height,omitempty"`
	Weight string `json:"weight,omitempty"`
	Waist  string `json:"waist,omitempty"`
}

// Lifestyle is collected on wizard step 3.
type Lifestyle struct {
	ActivityLevel     string `json:"activity_level,omitempty"`
	ExerciseFrequency string `json:"exercise_frequency,omitempty"`
	ExerciseDuration  string `json:"exercise_duration,omitempty"`
	DietType          string `json:"diet_type,omitempty"`
	WaterIntake       string `json:"water_intake,omitempty"`
	SleepHours        string `json:"sleep_hours,omitempty"`
}

// Goals is collected on wizard step 4. HealthConditions is a multi-select
// set kept in insertion order; "None" may coexist with specific conditions.
type Goals struct {
	PrimaryGoal      string   `json:"primary_goal,omitempty"`
	SecondaryGoal    string   `json:"secondary_goal,omitempty"`
	PreferredTime    string   `json:"preferred_time,omitempty"`
	Location         string   `json:"location,omitempty"`
	EquipmentAccess  string   `json:"equipment_access,omitempty"`
	HealthConditions []string `json:"health_conditions,omitempty"`
}

// HealthHistory is collected on wizard step 5 (free text).
type HealthHistory struct {
	Injuries          string `json:"injuries,omitempty"`
	MedicalConditions string `json:"medical_conditions,omitempty"`
	Medications       string `json:"medications,omitempty"`
	Allergies         string `json:"allergies,omitempty"`
}

// Commitment is collected on wizard step 6.
type Commitment struct {
	MotivationLevel    string `json:"motivation_level,omitempty"`
	WeeklyAvailability string `json:"weekly_availability,omitempty"`
	Budget             string `json:"budget,omitempty"`
	ExperienceLevel    string `json:"experience_level,omitempty"`
}

// Draft is the in-progress wizard form. It has no identity of its own; a
// submitted draft becomes an Assessment with a store-assigned id.
type Draft struct {
	Personal   PersonalInfo  `json:"personal"`
	Physical   PhysicalStats `json:"physical"`
	Lifestyle  Lifestyle     `json:"lifestyle"`
	Goals      Goals         `json:"goals"`
	Health     HealthHistory `json:"health_history"`
	Commitment Commitment    `json:"commitment"`
}

// Assessment is a persisted submission with a back-office review status.
type Assessment struct {
	ID        string    `json:"assessment_id"`
	Email     string    `json:"email,omitempty"`
	Draft     Draft     `json:"draft"`
	BMI       float64   `json:"bmi,omitempty"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// RecentPointer is one entry of a submitter's bounded recent-submissions
// list (newest first, oldest evicted).
type RecentPointer struct {
	AssessmentID string    `json:"assessment_id"`
	Email        string    `json:"email,omitempty"`
	SubmittedAt  time.Time `json:"submitted_at"`
	Status       string    `json:"status"`
}

// User is a staff account for the admin surface.
type User struct {
	ID        string
	Email     string
	Name      string
	PassHash  []byte
	CreatedAt time.Time
}

type AuditEntry struct {
	Time   time.Time `json:"time"`
	Actor  string    `json:"actor"`
	Action string    `json:"action"`
	Target string    `json:"target"`
	Note   string    `json:"note,omitempty"`
}
